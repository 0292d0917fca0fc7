package routes

import "github.com/quatton/jobsched/pkg/qapi/services/iam"

var (
	BasicAuth = []map[string][]string{
		{iam.SchemeBasic: {}},
	}
)

type Tag string

const (
	TagGeneral Tag = "general"
	TagIam     Tag = "iam"
	TagPBS     Tag = "pbs"
)

func (t Tag) String() string { return string(t) }

func AllTags() []string {
	return []string{
		TagGeneral.String(),
		TagIam.String(),
		TagPBS.String(),
	}
}

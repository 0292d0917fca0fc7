package job

import "github.com/quatton/jobsched/pkg/attrs"

// Field tables. Name is the JSON name of the model, Alias the PBS attribute.

var resourcesSchema = attrs.MustSchema(
	attrs.Field{Name: "node_count", Alias: "nodect"},
	attrs.Field{Name: "mem"},
	attrs.Field{Name: "cpu", Alias: "ncpus"},
	attrs.Field{Name: "gpu", Alias: "ngpus"},
	attrs.Field{Name: "select"},
	attrs.Field{Name: "place"},
	attrs.Field{Name: "walltime"},
)

var pathsSchema = attrs.MustSchema(
	attrs.Field{Name: "stdout", Alias: "Output_Path"},
	attrs.Field{Name: "stderr", Alias: "Error_Path"},
	attrs.Field{Name: "join_mode", Alias: "Join_Path"},
	attrs.Field{Name: "shell", Alias: "Shell_Path_List"},
)

var flagsSchema = attrs.MustSchema(
	attrs.Field{Name: "interactive"},
	attrs.Field{Name: "rerunable", Alias: "Rerunable"},
	attrs.Field{Name: "copy_env"},
	attrs.Field{Name: "forward_X11", Alias: "forward_x11_port"},
	attrs.Field{Name: "hold"},
	attrs.Field{Name: "array"},
)

// events is consumed while decoding and never kept on the record.
var notifySchema = attrs.MustSchema(
	attrs.Field{Name: "to", Alias: "Mail_Users"},
	attrs.Field{Name: "on_started"},
	attrs.Field{Name: "on_finished"},
	attrs.Field{Name: "on_aborted"},
	attrs.Field{Name: "events", Alias: "Mail_Points"},
)

var usageSchema = attrs.MustSchema(
	attrs.Field{Name: "request", Alias: "Resource_List", Record: resourcesSchema},
	attrs.Field{Name: "used", Alias: "resources_used", Record: resourcesSchema},
)

var timelineSchema = attrs.MustSchema(
	attrs.Field{Name: "created_at", Alias: "ctime"},
	attrs.Field{Name: "updated_at", Alias: "mtime"},
	attrs.Field{Name: "queued_at", Alias: "qtime"},
	attrs.Field{Name: "ready_at", Alias: "etime"},
)

func jobFields() []attrs.Field {
	return []attrs.Field{
		{Name: "name", Alias: "Job_Name"},
		{Name: "queue"},
		{Name: "submit_args", Alias: "Submit_arguments"},
	}
}

func attrFields() []attrs.Field {
	return []attrs.Field{
		{Name: "priority", Alias: "Priority"},
		{Name: "account", Alias: "Account_Name"},
		{Name: "project"},
		{Name: "paths", Record: pathsSchema, Inline: true},
		{Name: "flags", Record: flagsSchema, Inline: true},
		{Name: "notify_on", Record: notifySchema, Inline: true},
		{Name: "array_range", Alias: "array_indices_submitted"},
		{Name: "env", Alias: "Variable_List"},
	}
}

var extraSchema = attrs.MustSchema(attrFields()...)

// SubmitSchema describes a JobSubmit.
var SubmitSchema = attrs.MustSchema(append(jobFields(),
	attrs.Field{Name: "resources", Record: resourcesSchema},
	attrs.Field{Name: "extra", Record: extraSchema},
)...)

// StatSchema describes a JobStat. The shared attributes sit at the top level
// because qstat reports them flat.
var StatSchema = attrs.MustSchema(append(append(jobFields(), attrFields()...),
	attrs.Field{Name: "job_id"},
	attrs.Field{Name: "owner", Alias: "Job_Owner"},
	attrs.Field{Name: "status", Alias: "job_state"},
	attrs.Field{Name: "server"},
	attrs.Field{Name: "resources", Record: usageSchema, Inline: true},
	attrs.Field{Name: "comment"},
	attrs.Field{Name: "timeline", Record: timelineSchema, Inline: true},
	attrs.Field{Name: "hold_type", Alias: "Hold_Types"},
	attrs.Field{Name: "extra"},
)...)

package model

// Kind identifies which output table a record belongs to
type Kind int

const (
	KindParticipant  Kind = iota // [PART] lines
	KindContact                  // [CONT] lines
	KindTransmission             // [TRAN] lines
)

func (k Kind) String() string {
	switch k {
	case KindParticipant:
		return "participants"
	case KindContact:
		return "contacts"
	case KindTransmission:
		return "transmissions"
	default:
		return "unknown"
	}
}

// Schema describes one record kind: its log tag, output file suffix and
// ordered column names
type Schema struct {
	Kind   Kind
	Tag    string
	Suffix string
	Fields []string
}

// Record is one parsed log line, never retained past the row it becomes
type Record struct {
	Kind   Kind
	Values []string // len(Values) == len(schema.Fields)
	Line   int      // 1-based source line number
}

var schemas = []Schema{
	{
		Kind:   KindParticipant,
		Tag:    "[PART]",
		Suffix: "_participants.csv",
		Fields: []string{"local_id", "part_age", "part_gender"},
	},
	{
		Kind:   KindContact,
		Tag:    "[CONT]",
		Suffix: "_contacts.csv",
		Fields: []string{
			"local_id", "part_age", "cnt_age",
			"cnt_home", "cnt_school", "cnt_work",
			"cnt_prim_comm", "cnt_sec_comm", "sim_day",
		},
	},
	{
		Kind:   KindTransmission,
		Tag:    "[TRAN]",
		Suffix: "_transmissions.csv",
		Fields: []string{"local_id", "new_infected_id", "cnt_location", "sim_day"},
	},
}

// SourceSuffix is appended to a base path to locate the simulator log
const SourceSuffix = "_logfile.txt"

// Schemas returns the record schemas in output order. The returned slice
// is a copy; callers may not mutate the package tables through it.
func Schemas() []Schema {
	out := make([]Schema, len(schemas))
	copy(out, schemas)
	return out
}

// SchemaForTag returns the schema dispatched to by a log tag
func SchemaForTag(tag string) (Schema, bool) {
	for _, s := range schemas {
		if s.Tag == tag {
			return s, true
		}
	}
	return Schema{}, false
}

// SchemaFor returns the schema for a record kind
func SchemaFor(k Kind) (Schema, bool) {
	for _, s := range schemas {
		if s.Kind == k {
			return s, true
		}
	}
	return Schema{}, false
}

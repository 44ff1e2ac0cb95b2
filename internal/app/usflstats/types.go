package usflstats

import "encoding/json"

const (
	ModeFetch     = "fetch"
	ModeGames     = "games"
	ModeSeason    = "season"
	ModeSchedule  = "schedule"
	ModeStandings = "standings"
	ModePBP       = "pbp"
	ModeRosters   = "rosters"
	ModePipeline  = "pipeline" // fetch, games, season, pbp and schedule in one run
)

// Event is the Lambda payload.
type Event struct {
	Mode   string `json:"mode"`   // fetch | games | season | schedule | standings | pbp | rosters | pipeline
	Season int    `json:"season"` // falls back to SEASON
	Save   *bool  `json:"save"`   // default true
}

// Raw is used by Lambda entrypoint to avoid tight coupling to the event type at the edge.
type Raw = json.RawMessage

// Request is one run of a mode. Season 0 means every season for games mode
// and SEASON for the others.
type Request struct {
	Mode   string
	Season int
	Save   bool
}

// Result summarizes a run.
type Result struct {
	Mode    string   `json:"mode"`
	Seasons []int    `json:"seasons,omitempty"`
	Rows    int      `json:"rows"`
	Written []string `json:"written,omitempty"`
	Issues  int      `json:"issues,omitempty"`
}

func (r *Result) merge(o Result) {
	r.Seasons = append(r.Seasons, o.Seasons...)
	r.Rows += o.Rows
	r.Written = append(r.Written, o.Written...)
	r.Issues += o.Issues
}

package usfl

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FlexString decodes a JSON string, number or boolean into its text form.
// The feed is not consistent about which one it sends for ids, scores and flags.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	if bytes.Equal(b, []byte("true")) || bytes.Equal(b, []byte("false")) {
		*f = FlexString(b)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }

// Int returns the value as an integer, or nil when empty or not numeric.
func (f FlexString) Int() *int {
	n, err := strconv.Atoi(strings.TrimSpace(string(f)))
	if err != nil {
		return nil
	}
	return &n
}

// Bool reports whether the value is the literal true.
func (f FlexString) Bool() bool { return strings.EqualFold(strings.TrimSpace(string(f)), "true") }

// Game is the event payload: header metadata, box score and play-by-play.
type Game struct {
	Header   Header     `json:"header"`
	Boxscore Boxscore   `json:"boxscore"`
	PBP      PlayByPlay `json:"pbp"`
	Metadata Metadata   `json:"metadata"`
}

type Header struct {
	ID                   FlexString `json:"id"`
	EventTime            string     `json:"eventTime"`
	AnalyticsDescription string     `json:"analyticsDescription"`
	EventStatus          FlexString `json:"eventStatus"`
	IsTBA                bool       `json:"isTba"`
	SocialStartTime      string     `json:"socialStartTime"`
	SocialStopTime       string     `json:"socialStopTime"`
	StatusLine           string     `json:"statusLine"`
	VenueName            string     `json:"venueName"`
	VenueLocation        string     `json:"venueLocation"`
	ShareText            string     `json:"shareText"`
	Importance           FlexString `json:"importance"`
	LeftTeam             Team       `json:"leftTeam"`  // away
	RightTeam            Team       `json:"rightTeam"` // home
}

type Team struct {
	Name          string     `json:"name"`
	LongName      string     `json:"longName"`
	AlternateName string     `json:"alternateName"`
	Record        string     `json:"record"`
	Score         FlexString `json:"score"`
	IsLoser       bool       `json:"isLoser"`
	HasPossession bool       `json:"hasPossession"`
}

type Metadata struct {
	Parameters struct {
		AdditionalTitle string `json:"additionalTitle"`
		EventTitle      string `json:"eventTitle"`
	} `json:"parameters"`
}

type Boxscore struct {
	Sections []BoxscoreSection `json:"boxscoreSections"`
}

type BoxscoreSection struct {
	Title string         `json:"title"`
	Items []BoxscoreItem `json:"boxscoreItems"`
}

type BoxscoreItem struct {
	Table DataTable `json:"boxscoreTable"`
}

// DataTable is the header/rows grid used by both box scores and standings.
type DataTable struct {
	Headers []DataRow `json:"headers"`
	Rows    []DataRow `json:"rows"`
}

type DataRow struct {
	Columns    []Cell      `json:"columns"`
	EntityLink *EntityLink `json:"entityLink"`
}

type Cell struct {
	Index             *int   `json:"index"`
	Text              string `json:"text"`
	Superscript       string `json:"superscript"`
	ImageURL          string `json:"imageUrl"`
	ImageAltText      string `json:"imageAltText"`
	AlternateImageURL string `json:"alternateImageUrl"`
}

type EntityLink struct {
	Title          string `json:"title"`
	AnalyticsName  string `json:"analyticsName"`
	AnalyticsSport string `json:"analyticsSport"`
	ImageURL       string `json:"imageUrl"`
	ContentURI     string `json:"contentUri"`
	Layout         struct {
		Tokens struct {
			ID FlexString `json:"id"`
		} `json:"tokens"`
	} `json:"layout"`
}

// PlayByPlay is the drive chart: one section per quarter.
type PlayByPlay struct {
	Sections []PBPSection `json:"sections"`
}

type PBPSection struct {
	Title  string  `json:"title"`
	Groups []Drive `json:"groups"`
}

// Drive is one possession. Subtitle reads "7 plays · 75 yards · 3:12".
type Drive struct {
	ID           FlexString `json:"id"`
	Title        string     `json:"title"`
	Subtitle     string     `json:"subtitle"`
	ImageAltText string     `json:"imageAltText"`
	Plays        []Play     `json:"plays"`
}

// Play is one snap. Title is the down and distance ("2ND AND 7") or a
// marker such as KICKOFF; running scores are only present on some plays.
type Play struct {
	ID                   FlexString  `json:"id"`
	Title                string      `json:"title"`
	Subtitle             string      `json:"subtitle"`
	TimeOfPlay           string      `json:"timeOfPlay"`
	PlayDescription      string      `json:"playDescription"`
	LeftTeamScoreChange  FlexString  `json:"leftTeamScoreChange"`
	RightTeamScoreChange FlexString  `json:"rightTeamScoreChange"`
	LeftTeamScore        *FlexString `json:"leftTeamScore"`
	RightTeamScore       *FlexString `json:"rightTeamScore"`
}

// rosterPayload is /team/{id}/roster: position groups of player rows.
type rosterPayload struct {
	Groups []struct {
		Title string    `json:"title"`
		Rows  []DataRow `json:"rows"`
	} `json:"groups"`
}

func (e *EntityLink) id() string {
	if e == nil {
		return ""
	}
	return e.Layout.Tokens.ID.String()
}

// ParseGame decodes one event payload.
func ParseGame(b []byte) (*Game, error) {
	var g Game
	if err := json.Unmarshal(b, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

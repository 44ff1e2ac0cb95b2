package stats

// Line is one normalized category stat line for a player in a game.
// The concrete types are the closed set below; apply writes the line's
// fields onto the merged game row.
type Line interface {
	Key() Identity
	Category() Category
	apply(*GameRow)
}

type PassingLine struct {
	Identity
	Comp, Att *int
	Pct       *float64
	Yds       *int
	Avg       *float64
	TD, Int   *int
	QBR       *float64
}

type RushingLine struct {
	Identity
	Att, Yds *int
	Avg      *float64
	TD       *int
	Long     *int
}

type ReceivingLine struct {
	Identity
	Targets, Rec, Yds *int
	Avg               *float64
	TD                *int
	Long              *int
}

type FumblesLine struct {
	Identity
	Fumbles, Lost, Forced, Recovered *int
}

type DefenseLine struct {
	Identity
	Total, Solo, TFL *int
	Sacks            *float64
	Int, PD, TD      *int
}

type KickingLine struct {
	Identity
	FGM, FGA *int
	XPM, XPA *int
	Long     *int
}

type PuntingLine struct {
	Identity
	Punts                *int
	Avg                  *float64
	Touchbacks, Inside20 *int
	Blocked              *int
	Long                 *int
}

// ReturnLine covers both kick and punt returns; Kind selects which.
type ReturnLine struct {
	Identity
	Kind    Category
	Returns *int
	Yds     *int
	Avg     *float64
	TD      *int
	Long    *int
}

func (*PassingLine) Category() Category { return Passing }
func (*RushingLine) Category() Category { return Rushing }
func (*ReceivingLine) Category() Category { return Receiving }
func (*FumblesLine) Category() Category { return Fumbles }
func (*DefenseLine) Category() Category { return Defensive }
func (*KickingLine) Category() Category { return Kicking }
func (*PuntingLine) Category() Category { return Punting }
func (l *ReturnLine) Category() Category { return l.Kind }

func (l *PassingLine) apply(r *GameRow) {
	r.Comp, r.Att, r.CompPct = l.Comp, l.Att, l.Pct
	r.PassYds, r.YPA = l.Yds, l.Avg
	r.PassTD, r.PassInt = l.TD, l.Int
	r.NFLQBR = l.QBR
}

func (l *RushingLine) apply(r *GameRow) {
	r.Rush, r.RushYds, r.RushAvg = l.Att, l.Yds, l.Avg
	r.RushTD, r.RushLong = l.TD, l.Long
}

func (l *ReceivingLine) apply(r *GameRow) {
	r.RecTargets, r.Rec, r.RecYds, r.RecAvg = l.Targets, l.Rec, l.Yds, l.Avg
	r.RecTD, r.RecLong = l.TD, l.Long
}

func (l *FumblesLine) apply(r *GameRow) {
	r.Fumbles, r.FumblesLost = l.Fumbles, l.Lost
	r.FF, r.FR = l.Forced, l.Recovered
}

func (l *DefenseLine) apply(r *GameRow) {
	r.Total, r.Solo, r.TFL, r.Sacks = l.Total, l.Solo, l.TFL, l.Sacks
	r.Int, r.PD, r.DefTD = l.Int, l.PD, l.TD
	r.Ast = nil
	if l.Total != nil && l.Solo != nil {
		r.Ast = intPtr(*l.Total - *l.Solo)
	}
}

func (l *KickingLine) apply(r *GameRow) {
	r.FGM, r.FGA, r.FGLong = l.FGM, l.FGA, l.Long
	r.XPM, r.XPA = l.XPM, l.XPA
}

func (l *PuntingLine) apply(r *GameRow) {
	r.Punts, r.GrossPuntAvg = l.Punts, l.Avg
	r.PuntTB, r.PuntsIn20, r.PuntsBlk, r.PuntLong = l.Touchbacks, l.Inside20, l.Blocked, l.Long
	r.GrossPuntYds = nil
	if l.Punts != nil && l.Avg != nil {
		r.GrossPuntYds = intPtr(int(*l.Avg * float64(*l.Punts)))
	}
}

func (l *ReturnLine) apply(r *GameRow) {
	if l.Kind == PuntReturn {
		r.PR, r.PRYds, r.PRAvg, r.PRTD, r.PRLong = l.Returns, l.Yds, l.Avg, l.TD, l.Long
		return
	}
	r.KR, r.KRYds, r.KRAvg, r.KRTD, r.KRLong = l.Returns, l.Yds, l.Avg, l.TD, l.Long
}

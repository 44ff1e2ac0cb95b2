package usflstats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/tyler180/usfl-stats/internal/ath"
	"github.com/tyler180/usfl-stats/internal/config"
	"github.com/tyler180/usfl-stats/internal/materializer"
	"github.com/tyler180/usfl-stats/internal/stats"
	"github.com/tyler180/usfl-stats/internal/store"
	"github.com/tyler180/usfl-stats/internal/usfl"
)

// Service runs one mode end to end. Optional sinks are nil when unconfigured.
type Service struct {
	Cfg    config.Config
	Log    *slog.Logger
	API    *usfl.Client
	Local  store.Dir
	Remote store.Blob
	DDB    store.DynamoDBAPI
	SQL    *store.SQLite
	Athena *ath.Runner
}

// New wires sinks from cfg. AWS clients are only built when a bucket, table
// or Athena database is configured.
func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*Service, error) {
	if log == nil {
		log = slog.Default()
	}
	s := &Service{Cfg: cfg, Log: log, Local: store.Dir{Root: cfg.DataDir}}

	if cfg.CuratedBucket != "" || cfg.TableName != "" || cfg.AthenaDB != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("aws config: %w", err)
		}
		if cfg.CuratedBucket != "" {
			s.Remote = store.Bucket{Client: s3.NewFromConfig(awsCfg), Name: cfg.CuratedBucket, Prefix: cfg.CuratedPrefix}
		}
		if cfg.TableName != "" {
			s.DDB = dynamodb.NewFromConfig(awsCfg)
		}
		if cfg.AthenaDB != "" && s.Remote != nil {
			s.Athena = &ath.Runner{
				Client:    athena.NewFromConfig(awsCfg),
				Workgroup: cfg.AthenaWorkgroup,
				Database:  cfg.AthenaDB,
				OutputS3:  cfg.AthenaOutput,
				Logger:    log,
			}
		}
	}
	if cfg.SQLitePath != "" {
		db, err := store.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		s.SQL = db
	}
	return s, nil
}

func (s *Service) Close() error {
	if s.SQL != nil {
		return s.SQL.Close()
	}
	return nil
}

func (s *Service) client() (*usfl.Client, error) {
	if s.API != nil {
		return s.API, nil
	}
	key, err := s.Cfg.ResolveAPIKey()
	if err != nil {
		return nil, err
	}
	c := usfl.NewClient(key)
	c.Delay = s.Cfg.RequestDelay
	c.Retry = usfl.RetryConfig{
		MaxAttempts: s.Cfg.MaxAttempts,
		Base:        s.Cfg.RetryBase,
		Max:         s.Cfg.RetryMax,
		Cooldown:    s.Cfg.Cooldown,
	}
	c.Log = s.Log
	s.API = c
	return c, nil
}

// Run dispatches a request to its mode.
func (s *Service) Run(ctx context.Context, req Request) (Result, error) {
	mode := normMode(req.Mode)
	season := req.Season
	if season == 0 && mode != ModeGames {
		season = s.Cfg.Season
	}
	s.Log.Info("run", "mode", mode, "season", season, "save", req.Save)

	switch mode {
	case ModeFetch:
		return s.Fetch(ctx, req.Save)
	case ModeGames:
		return s.Games(ctx, season, req.Save)
	case ModeSeason:
		return s.Season(ctx, season, req.Save)
	case ModeSchedule:
		return s.Schedule(ctx, season, req.Save)
	case ModeStandings:
		return s.Standings(ctx, season, req.Save)
	case ModePBP:
		return s.PlayByPlay(ctx, season, req.Save)
	case ModeRosters:
		return s.Rosters(ctx, season, req.Save)
	case ModePipeline:
		return s.Pipeline(ctx, season, req.Save)
	default:
		return Result{}, fmt.Errorf("unknown mode %q", req.Mode)
	}
}

// Fetch downloads game payloads GAME_ID_FIRST..GAME_ID_LAST. With no upper
// bound it stops after a run of missing ids.
func (s *Service) Fetch(ctx context.Context, save bool) (Result, error) {
	res := Result{Mode: ModeFetch}
	c, err := s.client()
	if err != nil {
		return res, err
	}
	const maxMisses = 3
	first, last := max(s.Cfg.GameIDFirst, 1), s.Cfg.GameIDLast

	misses := 0
	for id := first; last == 0 || id <= last; id++ {
		g, raw, err := c.Game(ctx, id)
		if errors.Is(err, usfl.ErrNotFound) {
			s.Log.Info("game not found", "game_id", id)
			misses++
			if last == 0 && misses >= maxMisses {
				break
			}
			continue
		}
		if err != nil {
			return res, fmt.Errorf("fetch game %d: %w", id, err)
		}
		misses = 0
		res.Rows++
		s.Log.Info("fetched game", "game_id", id, "title", g.Header.AnalyticsDescription)
		if !save {
			continue
		}
		key := store.RawGameKey(id)
		for _, b := range s.blobs() {
			if err := b.Put(ctx, key, raw); err != nil {
				return res, fmt.Errorf("save game %d: %w", id, err)
			}
			res.Written = append(res.Written, b.Location(key))
		}
	}
	return res, nil
}

func (s *Service) blobs() []store.Blob {
	out := []store.Blob{s.Local}
	if s.Remote != nil {
		out = append(out, s.Remote)
	}
	return out
}

func (s *Service) loadGames() ([]*usfl.Game, error) {
	return usfl.LoadGameDir(s.Local.Location("gamelogs"), s.Log)
}

// gameTable extracts and merges every game. A game whose box score cannot
// be extracted is logged and left out.
func (s *Service) gameTable(games []*usfl.Game) (*stats.GameTable, int) {
	gt := stats.NewGameTable(s.Log)
	issues := 0
	for _, g := range games {
		tables, err := usfl.ExtractBoxScore(g)
		if err != nil {
			s.Log.Warn("skipping game", "game_id", g.Header.ID.String(), "err", err)
			issues++
			continue
		}
		m := stats.NewMerger(s.Log)
		for _, t := range tables {
			_ = m.Add(t) // the merger logs and keeps rejected tables
		}
		issues += len(m.Issues()) + len(m.Skipped())
		gt.Add(m.Rows()...)
	}
	return gt, issues
}

// Games builds the game-level table from saved payloads. Season 0 writes
// every season found.
func (s *Service) Games(ctx context.Context, season int, save bool) (Result, error) {
	games, err := s.loadGames()
	if err != nil {
		return Result{Mode: ModeGames}, err
	}
	gt, issues := s.gameTable(games)
	return s.publishGames(ctx, gt, season, issues, save)
}

func (s *Service) publishGames(ctx context.Context, gt *stats.GameTable, season, issues int, save bool) (Result, error) {
	res := Result{Mode: ModeGames, Issues: issues}
	by := gt.BySeason()
	seasons := gt.Seasons()
	if season != 0 {
		if _, ok := by[season]; !ok {
			return res, fmt.Errorf("games %d: %w", season, stats.ErrSeasonNotFound)
		}
		seasons = []int{season}
	}
	for _, yr := range seasons {
		rows := by[yr]
		res.Seasons = append(res.Seasons, yr)
		res.Rows += len(rows)
		if !save {
			continue
		}
		w, err := publish(ctx, s, store.GameStats, yr, rows)
		res.Written = append(res.Written, w...)
		if err != nil {
			return res, err
		}
	}
	return res, nil
}

// Season aggregates a saved game-level table into season totals.
func (s *Service) Season(ctx context.Context, season int, save bool) (Result, error) {
	rows, err := store.LoadTable[stats.GameRow](ctx, s.Local, store.GameStats, season)
	if errors.Is(err, store.ErrNotFound) && s.Remote != nil {
		rows, err = store.LoadTable[stats.GameRow](ctx, s.Remote, store.GameStats, season)
	}
	if err != nil {
		return Result{Mode: ModeSeason}, fmt.Errorf("load season %d: %w", season, err)
	}
	return s.publishSeason(ctx, season, rows, save)
}

func (s *Service) publishSeason(ctx context.Context, season int, games []stats.GameRow, save bool) (Result, error) {
	res := Result{Mode: ModeSeason, Seasons: []int{season}}
	rows, err := stats.AggregateSeason(season, games)
	if err != nil {
		return res, err
	}
	res.Rows = len(rows)
	s.Log.Info("aggregated season", "season", season, "game_rows", len(games), "players", len(rows))
	if !save {
		return res, nil
	}
	w, err := publish(ctx, s, store.SeasonStats, season, rows)
	res.Written = w
	if err != nil {
		return res, err
	}
	if s.DDB != nil {
		n, err := s.putDynamo(ctx, rows)
		res.Issues += n
		if err != nil {
			return res, fmt.Errorf("dynamodb: %w", err)
		}
		res.Written = append(res.Written, "dynamodb:"+s.Cfg.TableName)
	}
	return res, nil
}

// putDynamo writes season rows, then reads every partition back and counts
// the ones whose stored item count does not match what was written.
func (s *Service) putDynamo(ctx context.Context, rows []stats.SeasonRow) (int, error) {
	written, collapsed, err := store.PutSeasonRows(ctx, s.DDB, s.Cfg.TableName, rows)
	if err != nil {
		return 0, err
	}
	issues := 0
	if collapsed > 0 {
		s.Log.Warn("season rows share a dynamodb key", "collapsed", collapsed)
		issues += collapsed
	}
	bad, err := store.VerifyPartitions(ctx, s.DDB, s.Cfg.TableName, written)
	if err != nil {
		return issues, fmt.Errorf("verify: %w", err)
	}
	for p, got := range bad {
		s.Log.Warn("dynamodb partition count mismatch", "season", p.Season, "team", p.Team, "want", written[p], "got", got)
	}
	return issues + len(bad), nil
}

// Schedule writes one row per saved game of the season.
func (s *Service) Schedule(ctx context.Context, season int, save bool) (Result, error) {
	games, err := s.loadGames()
	if err != nil {
		return Result{Mode: ModeSchedule}, err
	}
	return s.publishSchedule(ctx, season, games, save)
}

func (s *Service) publishSchedule(ctx context.Context, season int, games []*usfl.Game, save bool) (Result, error) {
	rows, errs := usfl.ScheduleFromGames(games)
	for _, err := range errs {
		s.Log.Warn("schedule: skipping game", "err", err)
	}
	rows = filterSeason(rows, season, func(r usfl.ScheduleRow) int { return r.Season })
	res := Result{Mode: ModeSchedule, Seasons: []int{season}, Rows: len(rows), Issues: len(errs)}
	if len(rows) == 0 {
		return res, fmt.Errorf("schedule %d: %w", season, stats.ErrSeasonNotFound)
	}
	if !save {
		return res, nil
	}
	w, err := publish(ctx, s, store.Schedules, season, rows)
	res.Written = w
	return res, err
}

// Standings downloads and writes the season's division tables.
func (s *Service) Standings(ctx context.Context, season int, save bool) (Result, error) {
	res := Result{Mode: ModeStandings, Seasons: []int{season}}
	c, err := s.client()
	if err != nil {
		return res, err
	}
	rows, raw, err := c.Standings(ctx, season)
	if err != nil {
		return res, fmt.Errorf("standings %d: %w", season, err)
	}
	res.Rows = len(rows)
	if !save {
		return res, nil
	}
	key := store.Standings.Key(season, "json")
	for _, b := range s.blobs() {
		if err := b.Put(ctx, key, raw); err != nil {
			return res, fmt.Errorf("save standings %d: %w", season, err)
		}
		res.Written = append(res.Written, b.Location(key))
	}
	w, err := publish(ctx, s, store.Standings, season, rows)
	res.Written = append(res.Written, w...)
	return res, err
}

// PlayByPlay writes every play of the season's saved games.
func (s *Service) PlayByPlay(ctx context.Context, season int, save bool) (Result, error) {
	games, err := s.loadGames()
	if err != nil {
		return Result{Mode: ModePBP}, err
	}
	return s.publishPBP(ctx, season, games, save)
}

func (s *Service) publishPBP(ctx context.Context, season int, games []*usfl.Game, save bool) (Result, error) {
	rows, errs := usfl.ParsePlayByPlay(games)
	for _, err := range errs {
		s.Log.Warn("pbp: skipping game", "err", err)
	}
	rows = filterSeason(rows, season, func(r usfl.PlayRow) int { return r.Season })
	res := Result{Mode: ModePBP, Seasons: []int{season}, Rows: len(rows), Issues: len(errs)}
	if len(rows) == 0 {
		return res, fmt.Errorf("pbp %d: %w", season, stats.ErrSeasonNotFound)
	}
	if !save {
		return res, nil
	}
	w, err := publish(ctx, s, store.PlayByPlay, season, rows)
	res.Written = w
	return res, err
}

// Rosters downloads the roster of every team in the season's standings.
// A team whose roster cannot be fetched is logged and skipped.
func (s *Service) Rosters(ctx context.Context, season int, save bool) (Result, error) {
	res := Result{Mode: ModeRosters, Seasons: []int{season}}
	c, err := s.client()
	if err != nil {
		return res, err
	}
	standings, _, err := c.Standings(ctx, season)
	if err != nil {
		return res, fmt.Errorf("rosters %d: standings: %w", season, err)
	}
	var rows []usfl.RosterRow
	for _, team := range usfl.TeamsFromStandings(standings) {
		r, _, err := c.Roster(ctx, season, team)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			s.Log.Warn("roster: skipping team", "team_id", team.ID, "team", team.Name, "err", err)
			res.Issues++
			continue
		}
		s.Log.Info("fetched roster", "team", team.Name, "players", len(r))
		rows = append(rows, r...)
	}
	res.Rows = len(rows)
	if len(rows) == 0 {
		return res, fmt.Errorf("rosters %d: %w", season, stats.ErrSeasonNotFound)
	}
	if !save {
		return res, nil
	}
	w, err := publish(ctx, s, store.Rosters, season, rows)
	res.Written = w
	return res, err
}

// Pipeline fetches new games and rebuilds the season's game, season,
// play-by-play and schedule tables from them in one pass.
func (s *Service) Pipeline(ctx context.Context, season int, save bool) (Result, error) {
	res := Result{Mode: ModePipeline}
	// later stages read the payloads back from disk
	f, err := s.Fetch(ctx, true)
	res.merge(f)
	if err != nil {
		return res, err
	}
	games, err := s.loadGames()
	if err != nil {
		return res, err
	}
	gt, issues := s.gameTable(games)
	g, err := s.publishGames(ctx, gt, season, issues, save)
	res.merge(g)
	if err != nil {
		return res, err
	}
	sr, err := s.publishSeason(ctx, season, gt.BySeason()[season], save)
	res.merge(sr)
	if err != nil {
		return res, err
	}
	pb, err := s.publishPBP(ctx, season, games, save)
	res.merge(pb)
	switch {
	case errors.Is(err, stats.ErrSeasonNotFound):
		s.Log.Warn("no play-by-play for season", "season", season)
	case err != nil:
		return res, err
	}
	sc, err := s.publishSchedule(ctx, season, games, save)
	res.merge(sc)
	res.Seasons = []int{season}
	return res, err
}

// publish writes one season of a dataset to every configured sink.
func publish[T any](ctx context.Context, s *Service, d store.Dataset, season int, rows []T) ([]string, error) {
	var written []string
	for _, b := range s.blobs() {
		w, err := store.SaveTable(ctx, b, d, season, rows)
		written = append(written, w...)
		if err != nil {
			return written, err
		}
	}
	if s.Athena != nil && s.Remote != nil {
		if err := refreshAthena[T](ctx, s, d, season); err != nil {
			return written, fmt.Errorf("athena: %w", err)
		}
	}
	if s.SQL != nil {
		if err := store.ReplaceSeason(ctx, s.SQL, d, season, rows); err != nil {
			return written, fmt.Errorf("sqlite: %w", err)
		}
		written = append(written, "sqlite:"+d.TableName())
	}
	s.Log.Info("published table", "dataset", string(d), "season", season, "rows", len(rows))
	return written, nil
}

// refreshAthena recreates the dataset's external table over its parquet
// prefix and logs the season's row count.
func refreshAthena[T any](ctx context.Context, s *Service, d store.Dataset, season int) error {
	db, name := s.Cfg.AthenaDB, d.TableName()
	if _, err := s.Athena.ExecAndWait(ctx, materializer.BuildDrop(db, name)); err != nil {
		s.Log.Warn("athena drop failed", "table", name, "err", err)
	}
	ddl, err := materializer.BuildExternal[T](db, name, s.Remote.Location(d.Dir("parquet")))
	if err != nil {
		return err
	}
	if _, err := s.Athena.ExecAndWait(ctx, ddl); err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	n, err := s.Athena.CountRows(ctx, materializer.Qualified(db, name), fmt.Sprintf("season=%d", season))
	if err != nil {
		return fmt.Errorf("count %s: %w", name, err)
	}
	s.Log.Info("athena table ready", "table", name, "season", season, "rows", n)
	if d == store.SeasonStats {
		// informational only
		if _, err := s.Athena.ExecAndWait(ctx, materializer.BuildPerTeamCounts(db, name, season)); err != nil {
			s.Log.Warn("athena per-team counts failed", "err", err)
		}
	}
	return nil
}

// LambdaEntrypoint is the single Lambda handler exported from this package.
func LambdaEntrypoint(ctx context.Context, raw Raw) (string, error) {
	var e Event
	_ = json.Unmarshal(raw, &e)

	cfg := config.FromEnv()
	log := NewLogger(os.Stdout, cfg.Debug)

	mode := normMode(e.Mode)
	if mode == "" {
		mode = ModePipeline
	}
	save := true
	if e.Save != nil {
		save = *e.Save
	}

	svc, err := New(ctx, cfg, log)
	if err != nil {
		return "", err
	}
	defer svc.Close()

	res, err := svc.Run(ctx, Request{Mode: mode, Season: e.Season, Save: save})
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(res)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

package usflstats

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	athtypes "github.com/aws/aws-sdk-go-v2/service/athena/types"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tyler180/usfl-stats/internal/ath"
	"github.com/tyler180/usfl-stats/internal/config"
	"github.com/tyler180/usfl-stats/internal/stats"
	"github.com/tyler180/usfl-stats/internal/store"
	"github.com/tyler180/usfl-stats/internal/usfl"
)

type fakeS3 struct{ objects map[string][]byte }

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = b
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	b, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(b))}, nil
}

// fakeDDB keeps items by partition key. lose drops that many items on write.
type fakeDDB struct {
	items int
	lose  int
	parts map[string][]map[string]ddbtypes.AttributeValue
}

func (f *fakeDDB) BatchWriteItem(ctx context.Context, in *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	if f.parts == nil {
		f.parts = map[string][]map[string]ddbtypes.AttributeValue{}
	}
	for _, reqs := range in.RequestItems {
		for _, r := range reqs {
			f.items++
			if f.lose > 0 {
				f.lose--
				continue
			}
			pk := r.PutRequest.Item["SeasonTeam"].(*ddbtypes.AttributeValueMemberS).Value
			f.parts[pk] = append(f.parts[pk], r.PutRequest.Item)
		}
	}
	return &dynamodb.BatchWriteItemOutput{}, nil
}

func (f *fakeDDB) Query(ctx context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	pk := in.ExpressionAttributeValues[":v"].(*ddbtypes.AttributeValueMemberS).Value
	return &dynamodb.QueryOutput{Items: f.parts[pk]}, nil
}

type fakeAthena struct{ queries []string }

func (f *fakeAthena) StartQueryExecution(ctx context.Context, in *athena.StartQueryExecutionInput, _ ...func(*athena.Options)) (*athena.StartQueryExecutionOutput, error) {
	f.queries = append(f.queries, aws.ToString(in.QueryString))
	return &athena.StartQueryExecutionOutput{QueryExecutionId: aws.String("q")}, nil
}

func (f *fakeAthena) GetQueryExecution(ctx context.Context, in *athena.GetQueryExecutionInput, _ ...func(*athena.Options)) (*athena.GetQueryExecutionOutput, error) {
	return &athena.GetQueryExecutionOutput{QueryExecution: &athtypes.QueryExecution{
		QueryExecutionId: in.QueryExecutionId,
		Status:           &athtypes.QueryExecutionStatus{State: athtypes.QueryExecutionStateSucceeded},
	}}, nil
}

func (f *fakeAthena) GetQueryResults(ctx context.Context, in *athena.GetQueryResultsInput, _ ...func(*athena.Options)) (*athena.GetQueryResultsOutput, error) {
	return &athena.GetQueryResultsOutput{ResultSet: &athtypes.ResultSet{Rows: []athtypes.Row{
		{Data: []athtypes.Datum{{VarCharValue: aws.String("c")}}},
		{Data: []athtypes.Datum{{VarCharValue: aws.String("2")}}},
	}}}, nil
}

const standingsBody = `{"standingsSections":[{"standings":[{"headers":[{"columns":[{"text":"NORTH DIVISION"}]}],"rows":[
{"columns":[{"text":"1"},{"text":"Stallions","imageAltText":"Birmingham Stallions"},{"text":"8-2"},{"text":".800"},{"text":"256"},{"text":"190"},{"text":"5-0"},{"text":"3-2"},{"text":"4-1"},{"text":"W3"}],
 "entityLink":{"analyticsName":"birmingham-stallions","analyticsSport":"usfl","layout":{"tokens":{"id":"1"}}}},
{"columns":[{"text":"2"},{"text":"Generals","imageAltText":"New Jersey Generals"},{"text":"2-8"},{"text":".200"},{"text":"150"},{"text":"240"},{"text":"1-4"},{"text":"1-4"},{"text":"1-4"},{"text":"L2"}],
 "entityLink":{"analyticsName":"new-jersey-generals","analyticsSport":"usfl","layout":{"tokens":{"id":"2"}}}}]}]}]}`

const rosterBody = `{"groups":[{"title":"QUARTERBACKS","rows":[
{"columns":[{"text":"Alex McGough","superscript":"#12"},{"text":"QB"},{"text":"27"},{"text":"6'3\""},{"text":"214 lbs"},{"text":"FIU"}],
 "entityLink":{"analyticsName":"alex-mcgough","layout":{"tokens":{"id":"512"}}}}]}]}`

func usflServer(t *testing.T) *httptest.Server {
	t.Helper()
	game, err := os.ReadFile(filepath.Join("..", "..", "usfl", "testdata", "game_1.json"))
	require.NoError(t, err)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/event/1/data":
			_, _ = w.Write(game)
		case r.URL.Path == "/league/standings" && r.URL.Query().Get("season") == "2023":
			_, _ = w.Write([]byte(standingsBody))
		case r.URL.Path == "/team/1/roster":
			_, _ = w.Write([]byte(rosterBody))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testService(t *testing.T) *Service {
	t.Helper()
	srv := usflServer(t)
	c := usfl.NewClient("k")
	c.BaseURL = srv.URL
	c.Delay = 0
	log := NewLogger(io.Discard, false)
	c.Log = log
	return &Service{
		Cfg:   config.Config{Season: 2023, GameIDFirst: 1},
		Log:   log,
		API:   c,
		Local: store.Dir{Root: t.TempDir()},
	}
}

func TestPipelineWritesEverySink(t *testing.T) {
	ctx := context.Background()
	s := testService(t)
	fs := &fakeS3{objects: map[string][]byte{}}
	ddb := &fakeDDB{}
	s.Remote = store.Bucket{Client: fs, Name: "curated", Prefix: "usfl"}
	s.DDB = ddb
	s.Cfg.TableName = "usfl_season_stats"
	db, err := store.OpenSQLite(":memory:")
	require.NoError(t, err)
	s.SQL = db
	defer s.Close()

	res, err := s.Run(ctx, Request{Mode: "Pipeline", Save: true})
	require.NoError(t, err)
	assert.Equal(t, ModePipeline, res.Mode)
	assert.Equal(t, []int{2023}, res.Seasons)

	// game 1 fetched, then three misses
	assert.FileExists(t, filepath.Join(s.Local.Root, "gamelogs", "1.json"))
	assert.Contains(t, fs.objects, "usfl/gamelogs/1.json")

	for _, k := range []string{
		store.GameStats.Key(2023, "parquet"),
		store.SeasonStats.Key(2023, "csv"),
		store.PlayByPlay.Key(2023, "parquet"),
		store.Schedules.Key(2023, "parquet"),
	} {
		assert.FileExists(t, s.Local.Location(k))
		assert.Contains(t, fs.objects, "usfl/"+k)
	}

	seasonRows, err := store.LoadTable[stats.SeasonRow](ctx, s.Local, store.SeasonStats, 2023)
	require.NoError(t, err)
	require.Len(t, seasonRows, 2)
	for _, r := range seasonRows {
		assert.Equal(t, 1, r.G)
	}
	assert.Equal(t, 2, ddb.items)
	assert.Contains(t, res.Written, "dynamodb:usfl_season_stats")

	n, err := db.CountSeason(ctx, store.Schedules, 2023)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = db.CountSeason(ctx, store.PlayByPlay, 2023)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}

func TestSeasonDynamoReadBack(t *testing.T) {
	ctx := context.Background()
	s := testService(t)
	s.Cfg.TableName = "usfl_season_stats"
	_, err := s.Fetch(ctx, true)
	require.NoError(t, err)
	games, err := s.loadGames()
	require.NoError(t, err)
	gt, _ := s.gameTable(games)

	s.DDB = &fakeDDB{}
	res, err := s.publishSeason(ctx, 2023, gt.Rows(), true)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Issues)

	// one item never lands: its partition reads back short
	s.DDB = &fakeDDB{lose: 1}
	res, err = s.publishSeason(ctx, 2023, gt.Rows(), true)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Issues)
}

func TestPlayByPlayMode(t *testing.T) {
	ctx := context.Background()
	s := testService(t)
	_, err := s.Fetch(ctx, true)
	require.NoError(t, err)

	res, err := s.Run(ctx, Request{Mode: ModePBP, Save: true})
	require.NoError(t, err)
	assert.Equal(t, 7, res.Rows)

	rows, err := store.LoadTable[usfl.PlayRow](ctx, s.Local, store.PlayByPlay, 2023)
	require.NoError(t, err)
	require.Len(t, rows, 7)
	assert.Equal(t, 10, rows[0].PlayID)
	assert.Equal(t, 7, rows[6].HomeScore)

	_, err = s.PlayByPlay(ctx, 2024, false)
	assert.ErrorIs(t, err, stats.ErrSeasonNotFound)
}

func TestRostersMode(t *testing.T) {
	ctx := context.Background()
	s := testService(t)

	// team 2 has no roster page and is skipped
	res, err := s.Run(ctx, Request{Mode: ModeRosters, Save: true})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Rows)
	assert.Equal(t, 1, res.Issues)

	rows, err := store.LoadTable[usfl.RosterRow](ctx, s.Local, store.Rosters, 2023)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "1", rows[0].TeamID)
	assert.Equal(t, "birmingham-stallions", rows[0].TeamAnalyticsName)
	assert.Equal(t, "12", rows[0].JerseyNumber)
	assert.FileExists(t, s.Local.Location(store.Rosters.Key(2023, "csv")))
}

func TestGamesThenSeasonFromFiles(t *testing.T) {
	ctx := context.Background()
	s := testService(t)

	_, err := s.Run(ctx, Request{Mode: ModeFetch, Save: true})
	require.NoError(t, err)

	res, err := s.Run(ctx, Request{Mode: ModeGames, Save: true})
	require.NoError(t, err)
	assert.Equal(t, []int{2023}, res.Seasons)
	assert.Equal(t, 2, res.Rows)

	res, err = s.Run(ctx, Request{Mode: ModeSeason, Season: 2023, Save: true})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Rows)
	assert.FileExists(t, s.Local.Location(store.SeasonStats.Key(2023, "parquet")))
}

func TestSaveFalseWritesNothing(t *testing.T) {
	ctx := context.Background()
	s := testService(t)

	res, err := s.Fetch(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Rows)
	assert.Empty(t, res.Written)
	_, err = os.Stat(filepath.Join(s.Local.Root, "gamelogs"))
	assert.True(t, os.IsNotExist(err))
}

func TestSeasonWithoutGameStats(t *testing.T) {
	s := testService(t)
	_, err := s.Run(context.Background(), Request{Mode: ModeSeason, Season: 2022, Save: true})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGamesUnknownSeason(t *testing.T) {
	ctx := context.Background()
	s := testService(t)
	_, err := s.Fetch(ctx, true)
	require.NoError(t, err)
	_, err = s.Games(ctx, 2030, true)
	assert.ErrorIs(t, err, stats.ErrSeasonNotFound)
}

func TestStandings(t *testing.T) {
	s := testService(t)
	res, err := s.Run(context.Background(), Request{Mode: ModeStandings, Save: true})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Rows)

	rows, err := store.LoadTable[usfl.StandingRow](context.Background(), s.Local, store.Standings, 2023)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "NORTH DIVISION", rows[0].Division)

	raw, err := os.ReadFile(filepath.Join(s.Local.Root, "standings", "json", "2023_usfl_standings.json"))
	require.NoError(t, err)
	assert.Equal(t, standingsBody, string(raw))
}

func TestSeasonRefreshesAthena(t *testing.T) {
	ctx := context.Background()
	s := testService(t)
	fa := &fakeAthena{}
	s.Remote = store.Bucket{Client: &fakeS3{objects: map[string][]byte{}}, Name: "curated", Prefix: "usfl"}
	s.Cfg.AthenaDB = "usfl"
	s.Athena = &ath.Runner{Client: fa, Workgroup: "primary", Database: "usfl", Poll: time.Millisecond, Logger: s.Log}

	_, err := s.Fetch(ctx, true)
	require.NoError(t, err)
	games, err := s.loadGames()
	require.NoError(t, err)
	gt, _ := s.gameTable(games)
	_, err = s.publishSeason(ctx, 2023, gt.Rows(), true)
	require.NoError(t, err)

	require.Len(t, fa.queries, 4)
	assert.Equal(t, "DROP TABLE IF EXISTS `usfl`.`usfl_player_stats`", fa.queries[0])
	assert.True(t, strings.HasPrefix(fa.queries[1], "CREATE EXTERNAL TABLE IF NOT EXISTS `usfl`.`usfl_player_stats`"))
	assert.Contains(t, fa.queries[1], "LOCATION 's3://curated/usfl/player_stats/season_stats/parquet/'")
	assert.Equal(t, `SELECT COUNT(*) AS c FROM "usfl"."usfl_player_stats" WHERE season=2023`, fa.queries[2])
	assert.Contains(t, fa.queries[3], "GROUP BY team")
}

func TestRunUnknownMode(t *testing.T) {
	s := testService(t)
	_, err := s.Run(context.Background(), Request{Mode: "backfill"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown mode "backfill"`)
}

package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/tyler180/usfl-stats/internal/stats"
)

type DynamoDBAPI interface {
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// sleep between unprocessed-item retries; swapped in tests.
var sleep = func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func seasonTeam(season int, team string) string {
	return strconv.Itoa(season) + "#" + team
}

func num(i int) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.Itoa(i)}
}

func numf(f float64) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.FormatFloat(f, 'f', -1, 64)}
}

func str(s string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: s}
}

// putOpt sets k only when v is non-nil; DynamoDB has no use for null rates.
func putOpt(item map[string]types.AttributeValue, k string, v *float64) {
	if v != nil {
		item[k] = numf(*v)
	}
}

func seasonItem(r stats.SeasonRow, now string) map[string]types.AttributeValue {
	item := map[string]types.AttributeValue{
		"SeasonTeam":   str(seasonTeam(r.Season, r.Team)), // PK
		"PlayerID":     str(r.PlayerID),                   // SK
		"Season":       num(r.Season),
		"Team":         str(r.Team),
		"TeamNickname": str(r.TeamNickname),
		"Player":       str(r.PlayerName),
		"G":            num(r.G),
		"PassYds":      num(r.PassYds),
		"PassTD":       num(r.PassTD),
		"PassInt":      num(r.PassInt),
		"RushYds":      num(r.RushYds),
		"RushTD":       num(r.RushTD),
		"Rec":          num(r.Rec),
		"RecYds":       num(r.RecYds),
		"RecTD":        num(r.RecTD),
		"Tackles":      num(r.Total),
		"Sacks":        numf(r.Sacks),
		"DefInt":       num(r.Int),
		"FGM":          num(r.FGM),
		"FGA":          num(r.FGA),
		"UpdatedAt":    &types.AttributeValueMemberN{Value: now},
	}
	putOpt(item, "NFLQBR", r.NFLQBR)
	putOpt(item, "RushAvg", r.RushAvg)
	putOpt(item, "CatchPct", r.CatchPct)
	putOpt(item, "FGPct", r.FGPct)
	return item
}

// Partition is one SeasonTeam partition of the season table.
type Partition struct {
	Season int
	Team   string
}

// collapse keeps one row per item key. The same player listed under two
// names shares a key; the row with more games wins, later rows on ties.
func collapse(rows []stats.SeasonRow) (out []stats.SeasonRow, dropped int) {
	idx := map[string]int{}
	for _, r := range rows {
		if r.PlayerID == "" || r.Team == "" {
			continue
		}
		k := seasonTeam(r.Season, r.Team) + "|" + r.PlayerID
		if i, ok := idx[k]; ok {
			dropped++
			if r.G >= out[i].G {
				out[i] = r
			}
			continue
		}
		idx[k] = len(out)
		out = append(out, r)
	}
	return out, dropped
}

// PutSeasonRows upserts season totals keyed by SeasonTeam (season#team) and
// PlayerID. Rows without a player id or team are skipped. It returns the
// number of items written per partition and how many rows were collapsed
// into another row with the same key.
func PutSeasonRows(ctx context.Context, ddb DynamoDBAPI, tableName string, rows []stats.SeasonRow) (map[Partition]int, int, error) {
	items, dropped := collapse(rows)
	written := map[Partition]int{}
	if len(items) == 0 {
		return written, dropped, nil
	}
	const maxBatch = 25
	now := strconv.FormatInt(time.Now().Unix(), 10)

	for i := 0; i < len(items); i += maxBatch {
		end := min(i+maxBatch, len(items))

		reqs := make([]types.WriteRequest, 0, end-i)
		for _, r := range items[i:end] {
			reqs = append(reqs, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: seasonItem(r, now)},
			})
		}
		if err := batchWriteWithRetry(ctx, ddb, tableName, reqs); err != nil {
			return written, dropped, fmt.Errorf("batch write season rows: %w", err)
		}
		for _, r := range items[i:end] {
			written[Partition{r.Season, r.Team}]++
		}
	}
	return written, dropped, nil
}

func batchWriteWithRetry(ctx context.Context, ddb DynamoDBAPI, table string, reqs []types.WriteRequest) error {
	input := &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{table: reqs},
	}
	const maxAttempts = 6
	backoff := 120 * time.Millisecond

	for attempt := 0; attempt < maxAttempts; attempt++ {
		out, err := ddb.BatchWriteItem(ctx, input)
		if err != nil {
			return err
		}
		if len(out.UnprocessedItems) == 0 {
			return nil
		}
		input.RequestItems = out.UnprocessedItems
		if err := sleep(ctx, backoff); err != nil {
			return err
		}
		if backoff < 2*time.Second {
			backoff += 120 * time.Millisecond
		}
	}
	return fmt.Errorf("unprocessed items remained after retries for table %s", table)
}

// TeamSeasonEntry is the subset of a stored season row read back by QueryTeamSeason.
type TeamSeasonEntry struct {
	PlayerID string
	Player   string
	G        int
	PassYds  int
	RushYds  int
	RecYds   int
	Tackles  int
}

// QueryTeamSeason reads every player stored under one season#team partition.
func QueryTeamSeason(ctx context.Context, ddb DynamoDBAPI, tableName string, season int, team string) ([]TeamSeasonEntry, error) {
	var (
		out     []TeamSeasonEntry
		lastKey map[string]types.AttributeValue
	)
	for {
		page, err := ddb.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(tableName),
			KeyConditionExpression:    aws.String("#pk = :v"),
			ExpressionAttributeNames:  map[string]string{"#pk": "SeasonTeam"},
			ExpressionAttributeValues: map[string]types.AttributeValue{":v": str(seasonTeam(season, team))},
			ExclusiveStartKey:         lastKey,
			ConsistentRead:            aws.Bool(true),
		})
		if err != nil {
			return nil, fmt.Errorf("query %s %d#%s: %w", tableName, season, team, err)
		}
		for _, it := range page.Items {
			pid := getStr(it, "PlayerID")
			if pid == "" {
				continue
			}
			out = append(out, TeamSeasonEntry{
				PlayerID: pid,
				Player:   getStr(it, "Player"),
				G:        getNum(it, "G"),
				PassYds:  getNum(it, "PassYds"),
				RushYds:  getNum(it, "RushYds"),
				RecYds:   getNum(it, "RecYds"),
				Tackles:  getNum(it, "Tackles"),
			})
		}
		if len(page.LastEvaluatedKey) == 0 {
			break
		}
		lastKey = page.LastEvaluatedKey
	}
	return out, nil
}

// VerifyPartitions reads back every partition in want and returns those
// whose stored item count differs, mapped to the count found.
func VerifyPartitions(ctx context.Context, ddb DynamoDBAPI, tableName string, want map[Partition]int) (map[Partition]int, error) {
	keys := make([]Partition, 0, len(want))
	for p := range want {
		keys = append(keys, p)
	}
	slices.SortFunc(keys, func(a, b Partition) int {
		return cmp.Or(cmp.Compare(a.Season, b.Season), cmp.Compare(a.Team, b.Team))
	})

	bad := map[Partition]int{}
	for _, p := range keys {
		got, err := QueryTeamSeason(ctx, ddb, tableName, p.Season, p.Team)
		if err != nil {
			return bad, err
		}
		if len(got) != want[p] {
			bad[p] = len(got)
		}
	}
	return bad, nil
}

func getStr(m map[string]types.AttributeValue, key string) string {
	if v, ok := m[key]; ok {
		if s, ok2 := v.(*types.AttributeValueMemberS); ok2 {
			return s.Value
		}
	}
	return ""
}

func getNum(m map[string]types.AttributeValue, key string) int {
	if v, ok := m[key]; ok {
		switch t := v.(type) {
		case *types.AttributeValueMemberN:
			n, _ := strconv.Atoi(t.Value)
			return n
		case *types.AttributeValueMemberS:
			n, _ := strconv.Atoi(t.Value)
			return n
		}
	}
	return 0
}

package ath

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/athena/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAthena struct {
	started []*athena.StartQueryExecutionInput
	states  []types.QueryExecutionState
	reason  string
	count   string
}

func (f *fakeAthena) StartQueryExecution(ctx context.Context, in *athena.StartQueryExecutionInput, _ ...func(*athena.Options)) (*athena.StartQueryExecutionOutput, error) {
	f.started = append(f.started, in)
	return &athena.StartQueryExecutionOutput{QueryExecutionId: aws.String("q-1")}, nil
}

func (f *fakeAthena) GetQueryExecution(ctx context.Context, in *athena.GetQueryExecutionInput, _ ...func(*athena.Options)) (*athena.GetQueryExecutionOutput, error) {
	st := types.QueryExecutionStateSucceeded
	if len(f.states) > 0 {
		st = f.states[0]
		f.states = f.states[1:]
	}
	qe := &types.QueryExecution{
		QueryExecutionId: in.QueryExecutionId,
		Status:           &types.QueryExecutionStatus{State: st},
		Statistics:       &types.QueryExecutionStatistics{DataScannedInBytes: aws.Int64(2 << 20)},
	}
	if f.reason != "" {
		qe.Status.StateChangeReason = aws.String(f.reason)
	}
	return &athena.GetQueryExecutionOutput{QueryExecution: qe}, nil
}

func (f *fakeAthena) GetQueryResults(ctx context.Context, in *athena.GetQueryResultsInput, _ ...func(*athena.Options)) (*athena.GetQueryResultsOutput, error) {
	return &athena.GetQueryResultsOutput{ResultSet: &types.ResultSet{Rows: []types.Row{
		{Data: []types.Datum{{VarCharValue: aws.String("c")}}},
		{Data: []types.Datum{{VarCharValue: aws.String(f.count)}}},
	}}}, nil
}

func runner(f *fakeAthena) *Runner {
	return &Runner{
		Client:    f,
		Workgroup: "primary",
		Database:  "usfl",
		Poll:      time.Millisecond,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestExecAndWait(t *testing.T) {
	f := &fakeAthena{states: []types.QueryExecutionState{types.QueryExecutionStateQueued, types.QueryExecutionStateRunning}}
	qe, err := runner(f).ExecAndWait(context.Background(), "SELECT 1")
	require.NoError(t, err)
	assert.Equal(t, "q-1", aws.ToString(qe.QueryExecutionId))

	require.Len(t, f.started, 1)
	in := f.started[0]
	assert.Equal(t, "SELECT 1", aws.ToString(in.QueryString))
	assert.Equal(t, "usfl", aws.ToString(in.QueryExecutionContext.Database))
	assert.Nil(t, in.ResultConfiguration)
}

func TestExecAndWaitFailures(t *testing.T) {
	f := &fakeAthena{states: []types.QueryExecutionState{types.QueryExecutionStateFailed}, reason: "SYNTAX_ERROR"}
	_, err := runner(f).ExecAndWait(context.Background(), "SELEC 1")
	assert.ErrorIs(t, err, ErrQueryFailed)
	assert.Contains(t, err.Error(), "SYNTAX_ERROR")

	f = &fakeAthena{states: []types.QueryExecutionState{types.QueryExecutionStateCancelled}}
	_, err = runner(f).ExecAndWait(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, ErrQueryCancelled)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := runner(&fakeAthena{})
	r.Poll = time.Hour
	_, err = r.ExecAndWait(ctx, "SELECT 1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCountRows(t *testing.T) {
	f := &fakeAthena{count: "412"}
	r := runner(f)
	r.OutputS3 = "s3://results/athena/"
	n, err := r.CountRows(context.Background(), "usfl.player_stats", "season = 2023")
	require.NoError(t, err)
	assert.EqualValues(t, 412, n)
	assert.Equal(t, "SELECT COUNT(*) AS c FROM usfl.player_stats WHERE season = 2023", aws.ToString(f.started[0].QueryString))
	assert.Equal(t, "s3://results/athena/", aws.ToString(f.started[0].ResultConfiguration.OutputLocation))

	f.count = "many"
	_, err = r.CountRows(context.Background(), "usfl.player_stats", "")
	assert.Error(t, err)
}

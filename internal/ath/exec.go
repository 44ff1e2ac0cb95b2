package ath

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/athena/types"
)

var (
	ErrQueryFailed    = errors.New("athena query failed")
	ErrQueryCancelled = errors.New("athena query cancelled")
)

type AthenaAPI interface {
	StartQueryExecution(ctx context.Context, params *athena.StartQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.StartQueryExecutionOutput, error)
	GetQueryExecution(ctx context.Context, params *athena.GetQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.GetQueryExecutionOutput, error)
	GetQueryResults(ctx context.Context, params *athena.GetQueryResultsInput, optFns ...func(*athena.Options)) (*athena.GetQueryResultsOutput, error)
}

type Runner struct {
	Client    AthenaAPI
	Workgroup string
	Database  string
	OutputS3  string // s3://bucket/prefix/, optional when the workgroup sets one
	Poll      time.Duration
	Logger    *slog.Logger
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

func (r *Runner) start(ctx context.Context, sql string) (string, error) {
	in := &athena.StartQueryExecutionInput{
		QueryString: aws.String(sql),
		WorkGroup:   aws.String(r.Workgroup),
	}
	if r.Database != "" {
		in.QueryExecutionContext = &types.QueryExecutionContext{Database: aws.String(r.Database)}
	}
	if r.OutputS3 != "" {
		in.ResultConfiguration = &types.ResultConfiguration{OutputLocation: aws.String(r.OutputS3)}
	}
	out, err := r.Client.StartQueryExecution(ctx, in)
	if err != nil {
		return "", fmt.Errorf("start query: %w", err)
	}
	return aws.ToString(out.QueryExecutionId), nil
}

// ExecAndWait submits sql and polls until it reaches a terminal state.
func (r *Runner) ExecAndWait(ctx context.Context, sql string) (*types.QueryExecution, error) {
	qid, err := r.start(ctx, sql)
	if err != nil {
		return nil, err
	}
	log := r.logger().With("qid", qid)
	log.Debug("athena query started")

	poll := r.Poll
	if poll <= 0 {
		poll = time.Second
	}
	tick := time.NewTicker(poll)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-tick.C:
		}
		ge, err := r.Client.GetQueryExecution(ctx, &athena.GetQueryExecutionInput{
			QueryExecutionId: aws.String(qid),
		})
		if err != nil {
			return nil, fmt.Errorf("get query execution %s: %w", qid, err)
		}
		qe := ge.QueryExecution
		switch qe.Status.State {
		case types.QueryExecutionStateSucceeded:
			var scannedMB, execSec float64
			if s := qe.Statistics; s != nil {
				scannedMB = float64(aws.ToInt64(s.DataScannedInBytes)) / 1024.0 / 1024.0
				execSec = float64(aws.ToInt64(s.EngineExecutionTimeInMillis)) / 1000.0
			}
			log.Info("athena query succeeded", "scanned_mb", fmt.Sprintf("%.3f", scannedMB), "exec_s", fmt.Sprintf("%.2f", execSec))
			return qe, nil
		case types.QueryExecutionStateFailed:
			msg := "unknown error"
			if qe.Status.AthenaError != nil && qe.Status.AthenaError.ErrorMessage != nil {
				msg = aws.ToString(qe.Status.AthenaError.ErrorMessage)
			} else if qe.Status.StateChangeReason != nil {
				msg = aws.ToString(qe.Status.StateChangeReason)
			}
			return nil, fmt.Errorf("%w: %s: %s", ErrQueryFailed, qid, msg)
		case types.QueryExecutionStateCancelled:
			return nil, fmt.Errorf("%w: %s", ErrQueryCancelled, qid)
		default:
			// queued or running
		}
	}
}

// CountRows runs a COUNT(*) over table with an optional WHERE clause.
func (r *Runner) CountRows(ctx context.Context, table, where string) (int64, error) {
	sql := fmt.Sprintf("SELECT COUNT(*) AS c FROM %s", table)
	if where != "" {
		sql += " WHERE " + where
	}
	exec, err := r.ExecAndWait(ctx, sql)
	if err != nil {
		return 0, err
	}
	gr, err := r.Client.GetQueryResults(ctx, &athena.GetQueryResultsInput{
		QueryExecutionId: exec.QueryExecutionId,
	})
	if err != nil {
		return 0, fmt.Errorf("get results: %w", err)
	}
	// row 0 is the header
	if len(gr.ResultSet.Rows) < 2 || len(gr.ResultSet.Rows[1].Data) < 1 || gr.ResultSet.Rows[1].Data[0].VarCharValue == nil {
		return 0, errors.New("unexpected COUNT(*) result shape")
	}
	var n int64
	if _, err := fmt.Sscan(*gr.ResultSet.Rows[1].Data[0].VarCharValue, &n); err != nil {
		return 0, fmt.Errorf("parse count: %w", err)
	}
	return n, nil
}

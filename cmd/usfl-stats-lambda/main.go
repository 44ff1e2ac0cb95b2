package main

import (
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/tyler180/usfl-stats/internal/app/usflstats"
)

func main() {
	log.SetFlags(0)
	lambda.Start(usflstats.LambdaEntrypoint)
}

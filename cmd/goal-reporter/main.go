// Command goal-reporter posts today's goal attendance to the chat webhook.
package main

import (
	"os"

	"github.com/noah-isme/campus-lms-api/internal/models"
	"github.com/noah-isme/campus-lms-api/internal/reporter"
)

func main() {
	os.Exit(reporter.Main("goal-reporter", models.SubmissionGoals, os.Args[1:], os.Stdout, os.Stderr))
}

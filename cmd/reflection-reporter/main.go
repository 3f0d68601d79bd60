// Command reflection-reporter posts today's reflection attendance to the chat webhook.
package main

import (
	"os"

	"github.com/noah-isme/campus-lms-api/internal/models"
	"github.com/noah-isme/campus-lms-api/internal/reporter"
)

func main() {
	os.Exit(reporter.Main("reflection-reporter", models.SubmissionReflections, os.Args[1:], os.Stdout, os.Stderr))
}

// Package report exports detection reports for human review.
package report

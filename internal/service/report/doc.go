// Package report assembles the analytics dashboard for one campaign.
//
// A report is built from eight independent store reads issued concurrently
// and bounded by an errgroup limit. The report is only returned once every
// read succeeded; any failure fails the whole report. Rates are fixed-point
// decimal strings and a zero denominator yields "0.0" (or "0.00"), never an
// error or NaN.
package report

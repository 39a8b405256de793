// Package rules evaluates conditional rules against battery and price data
// and produces a schedule fragment.
//
// Each enabled rule is checked independently for today and tomorrow. A rule
// whose conditions all hold contributes two entries for that day: the action
// at the start of its time range and a stop (0 W) at its end. Later rules
// overwrite earlier ones on identical keys. Conditions that cannot be checked
// because data is missing fail closed and are reported as warnings; they never
// abort the evaluation of other rules.
package rules

package inbox

import "github.com/stretchr/testify/mock"

// MatchEntry creates a custom matcher for entry arguments in mocks
func MatchEntry(matcher func(Entry) bool) interface{} {
	return mock.MatchedBy(matcher)
}

// MatchRequest creates a custom matcher for request arguments in mocks
func MatchRequest(matcher func(Request) bool) interface{} {
	return mock.MatchedBy(matcher)
}

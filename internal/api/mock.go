package api

import (
	"net/http"

	"github.com/stretchr/testify/mock"
)

// MockDoer is a mock implementation of Doer for testing.
type MockDoer struct {
	mock.Mock
}

// Do provides a mock function with given fields: req.
func (_m *MockDoer) Do(req *http.Request) (*http.Response, error) {
	ret := _m.Called(req)

	var r0 *http.Response
	if rf, ok := ret.Get(0).(func(*http.Request) *http.Response); ok {
		r0 = rf(req)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*http.Response)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(*http.Request) error); ok {
		r1 = rf(req)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

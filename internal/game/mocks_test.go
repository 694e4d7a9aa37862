package game

import "github.com/stretchr/testify/mock"

type MockIDGenerator struct {
	mock.Mock
}

func (m *MockIDGenerator) Generate() string {
	args := m.Called()
	return args.String(0)
}

// fixedIDs returns a generator that yields ids in order.
func fixedIDs(ids ...string) *MockIDGenerator {
	m := &MockIDGenerator{}
	for _, id := range ids {
		m.On("Generate").Return(id).Once()
	}
	return m
}

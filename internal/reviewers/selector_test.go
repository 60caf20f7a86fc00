package reviewers_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/gpr/internal/reviewers"
)

type stubMemberLister struct {
	members       []string
	failure       error
	organizations []string
}

func (lister *stubMemberLister) ListOrganizationMembers(_ context.Context, organization string) ([]string, error) {
	lister.organizations = append(lister.organizations, organization)
	return lister.members, lister.failure
}

type stubPicker struct {
	chosen     []string
	failure    error
	candidates []string
	invoked    bool
}

func (picker *stubPicker) PickReviewers(_ context.Context, candidates []string) ([]string, error) {
	picker.invoked = true
	picker.candidates = candidates
	return picker.chosen, picker.failure
}

func TestSelectionArgument(testInstance *testing.T) {
	require.Empty(testInstance, reviewers.Selection{}.Argument())
	require.Equal(testInstance, "alice", reviewers.Selection{Reviewers: []string{"alice"}}.Argument())
	require.Equal(testInstance, "carol,alice,bob", reviewers.Selection{Reviewers: []string{"carol", "alice", "bob"}}.Argument())
}

func TestSelect(testInstance *testing.T) {
	testCases := []struct {
		name               string
		lister             *stubMemberLister
		picker             *stubPicker
		expected           reviewers.Selection
		expectPicker       bool
		expectedCandidates []string
		expectedLogLevel   zapcore.Level
		expectLog          bool
	}{
		{
			name:               "chosen_reviewers",
			lister:             &stubMemberLister{members: []string{"alice", " bob ", "", "alice"}},
			picker:             &stubPicker{chosen: []string{"bob", "alice"}},
			expected:           reviewers.Selection{Reviewers: []string{"bob", "alice"}},
			expectPicker:       true,
			expectedCandidates: []string{"alice", "bob"},
		},
		{
			name:             "no_candidates",
			lister:           &stubMemberLister{},
			picker:           &stubPicker{},
			expected:         reviewers.Selection{NoCandidates: true},
			expectedLogLevel: zapcore.WarnLevel,
			expectLog:        true,
		},
		{
			name:               "cancelled",
			lister:             &stubMemberLister{members: []string{"alice"}},
			picker:             &stubPicker{failure: reviewers.ErrSelectionCancelled},
			expected:           reviewers.Selection{Cancelled: true},
			expectPicker:       true,
			expectedCandidates: []string{"alice"},
			expectedLogLevel:   zapcore.InfoLevel,
			expectLog:          true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			selector, creationError := reviewers.NewSelector(zap.New(core), testCase.lister, testCase.picker, "acme")
			require.NoError(subTest, creationError)

			selection, selectError := selector.Select(context.Background())
			require.NoError(subTest, selectError)
			require.Equal(subTest, testCase.expected, selection)
			require.Equal(subTest, testCase.expectPicker, testCase.picker.invoked)
			require.Equal(subTest, testCase.expectedCandidates, testCase.picker.candidates)
			require.Equal(subTest, []string{"acme"}, testCase.lister.organizations)
			if testCase.expectLog {
				require.Equal(subTest, 1, logs.FilterLevelExact(testCase.expectedLogLevel).Len())
			}
		})
	}
}

func TestSelectPropagatesFailures(testInstance *testing.T) {
	listFailure := errors.New("gh: not authenticated")
	selector, creationError := reviewers.NewSelector(zap.NewNop(), &stubMemberLister{failure: listFailure}, &stubPicker{}, "acme")
	require.NoError(testInstance, creationError)
	_, selectError := selector.Select(context.Background())
	require.ErrorIs(testInstance, selectError, listFailure)

	pickFailure := errors.New("terminal unavailable")
	selector, creationError = reviewers.NewSelector(zap.NewNop(), &stubMemberLister{members: []string{"alice"}}, &stubPicker{failure: pickFailure}, "acme")
	require.NoError(testInstance, creationError)
	_, selectError = selector.Select(context.Background())
	require.ErrorIs(testInstance, selectError, pickFailure)
}

func TestSelectRequiresOrganization(testInstance *testing.T) {
	lister := &stubMemberLister{members: []string{"alice"}}
	selector, creationError := reviewers.NewSelector(zap.NewNop(), lister, &stubPicker{}, " ")
	require.NoError(testInstance, creationError)
	_, selectError := selector.Select(context.Background())
	require.ErrorIs(testInstance, selectError, reviewers.ErrOrganizationMissing)
	require.Empty(testInstance, lister.organizations)
}

package receipt_test

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"pgregory.net/rapid"

	"github.com/tapnet/tap-core/model/eip712"
	"github.com/tapnet/tap-core/model/tap"
	mockmodule "github.com/tapnet/tap-core/module/mock"
	"github.com/tapnet/tap-core/module/receipt"
	"github.com/tapnet/tap-core/utils/unittest"
)

type CheckerSuite struct {
	suite.Suite

	domain  eip712.Domain
	key     *ecdsa.PrivateKey
	sender  common.Address
	checks  *mockmodule.ReceiptChecks
	checker *receipt.Checker
}

func TestChecker(t *testing.T) {
	suite.Run(t, new(CheckerSuite))
}

func (s *CheckerSuite) SetupTest() {
	s.domain = unittest.DomainFixture()
	s.key = unittest.KeyFixture()
	s.sender = unittest.KeyAddress(s.key)
	s.checks = mockmodule.NewReceiptChecks(s.T())
	s.checker = receipt.NewChecker(unittest.Logger(), s.domain, s.checks, time.Second)
}

// expect sets up the four check results for the given receipt.
func (s *CheckerSuite) expect(signed *tap.SignedReceipt, unique, allocation, value, sender bool) {
	id := signed.ID()
	s.checks.On("IsUnique", mock.Anything, signed, id).Return(unique, nil).Once()
	s.checks.On("IsValidAllocationID", mock.Anything, signed.Message.AllocationID).Return(allocation, nil).Once()
	s.checks.On("IsValidValue", mock.Anything, &signed.Message.Value, id).Return(value, nil).Once()
	s.checks.On("IsValidSenderID", mock.Anything, s.sender).Return(sender, nil).Once()
}

// TestAllChecksPass verifies that a receipt passing every check awaits reserve and can be reserved.
func (s *CheckerSuite) TestAllChecksPass() {
	signed := unittest.SignedReceiptFixture(s.domain, s.key)
	s.expect(signed, true, true, true, true)

	checking := receipt.NewCheckingReceipt(signed)
	s.Require().Equal(receipt.Checking{}, checking.State())

	next := checking.PerformChecks(context.Background(), s.checker)
	awaiting, ok := next.(*receipt.AwaitingReserveReceipt)
	s.Require().True(ok, "unexpected state %s", next.State())
	s.Assert().Equal(signed.ID(), awaiting.ID())
	s.Assert().Same(signed, awaiting.Signed())

	reserved := awaiting.Reserve()
	s.Assert().Equal(receipt.Reserved{}, reserved.State())
	s.Assert().True(receipt.IsTerminal(reserved.State()))
}

// TestValueRejected verifies that a false predicate is recorded as a rejection of that check.
func (s *CheckerSuite) TestValueRejected() {
	signed := unittest.SignedReceiptFixture(s.domain, s.key)
	s.expect(signed, true, true, false, true)

	next := receipt.NewCheckingReceipt(signed).PerformChecks(context.Background(), s.checker)
	failed, ok := next.(*receipt.FailedReceipt)
	s.Require().True(ok)
	s.Assert().True(receipt.IsTerminal(failed.State()))

	failure, ok := receipt.AsCheckFailure(failed.Err())
	s.Require().True(ok)
	s.Assert().Equal(receipt.CheckValue, failure.Check)
	s.Assert().ErrorIs(failure, receipt.ErrCheckRejected)
	s.Assert().False(receipt.IsContractError(failure))
}

// TestPriorityTieBreak verifies that the highest-priority failure is recorded when several
// checks fail.
func (s *CheckerSuite) TestPriorityTieBreak() {
	signed := unittest.SignedReceiptFixture(s.domain, s.key)
	s.expect(signed, true, true, false, false)

	err := s.checker.Check(context.Background(), signed, signed.ID(), receipt.AllChecks)
	failure, ok := receipt.AsCheckFailure(err)
	s.Require().True(ok)
	s.Assert().Equal(receipt.CheckValue, failure.Check)

	signed = unittest.SignedReceiptFixture(s.domain, s.key)
	s.expect(signed, false, false, true, false)

	err = s.checker.Check(context.Background(), signed, signed.ID(), receipt.AllChecks)
	failure, ok = receipt.AsCheckFailure(err)
	s.Require().True(ok)
	s.Assert().Equal(receipt.CheckUnique, failure.Check)
}

// TestContractError verifies that an error raised by the checks implementation is surfaced as
// a ContractError, not as a rejection.
func (s *CheckerSuite) TestContractError() {
	signed := unittest.SignedReceiptFixture(s.domain, s.key)
	id := signed.ID()
	exception := errors.New("allocation registry unavailable")

	s.checks.On("IsUnique", mock.Anything, signed, id).Return(true, nil).Once()
	s.checks.On("IsValidAllocationID", mock.Anything, signed.Message.AllocationID).Return(false, exception).Once()
	s.checks.On("IsValidValue", mock.Anything, mock.Anything, id).Return(true, nil).Once()
	s.checks.On("IsValidSenderID", mock.Anything, s.sender).Return(true, nil).Once()

	err := s.checker.Check(context.Background(), signed, id, receipt.AllChecks)
	failure, ok := receipt.AsCheckFailure(err)
	s.Require().True(ok)
	s.Assert().Equal(receipt.CheckAllocationID, failure.Check)
	s.Assert().True(receipt.IsContractError(err))
	s.Assert().ErrorIs(err, exception)
	s.Assert().NotErrorIs(err, receipt.ErrCheckRejected)
}

// TestTimeout verifies that a check exceeding the per-receipt deadline fails with a
// ContractError wrapping the deadline.
func (s *CheckerSuite) TestTimeout() {
	checker := receipt.NewChecker(unittest.Logger(), s.domain, s.checks, 10*time.Millisecond)
	signed := unittest.SignedReceiptFixture(s.domain, s.key)
	id := signed.ID()

	s.checks.On("IsUnique", mock.Anything, signed, id).Return(true, nil).Once()
	s.checks.On("IsValidAllocationID", mock.Anything, mock.Anything).Return(true, nil).Once()
	s.checks.On("IsValidValue", mock.Anything, mock.Anything, id).Return(
		func(ctx context.Context, _ *uint256.Int, _ tap.ReceiptID) (bool, error) {
			<-ctx.Done()
			return false, ctx.Err()
		}).Once()
	s.checks.On("IsValidSenderID", mock.Anything, s.sender).Return(true, nil).Once()

	var err error
	unittest.RequireReturnsBefore(s.T(), func() {
		err = checker.Check(context.Background(), signed, id, receipt.AllChecks)
	}, time.Second)

	failure, ok := receipt.AsCheckFailure(err)
	s.Require().True(ok)
	s.Assert().Equal(receipt.CheckValue, failure.Check)
	s.Assert().True(receipt.IsContractError(err))
	s.Assert().ErrorIs(err, context.DeadlineExceeded)
}

// TestTimeoutIgnoredByChecks verifies that the deadline is enforced even when the checks
// implementation does not watch its context, and that a late pass is discarded.
func (s *CheckerSuite) TestTimeoutIgnoredByChecks() {
	checker := receipt.NewChecker(unittest.Logger(), s.domain, s.checks, 20*time.Millisecond)
	signed := unittest.SignedReceiptFixture(s.domain, s.key)
	id := signed.ID()

	released := make(chan struct{})
	s.checks.On("IsUnique", mock.Anything, signed, id).Return(true, nil).Once()
	s.checks.On("IsValidAllocationID", mock.Anything, mock.Anything).Return(true, nil).Once()
	s.checks.On("IsValidValue", mock.Anything, mock.Anything, id).Return(
		func(context.Context, *uint256.Int, tap.ReceiptID) (bool, error) {
			defer close(released)
			time.Sleep(300 * time.Millisecond)
			return true, nil
		}).Once()
	s.checks.On("IsValidSenderID", mock.Anything, s.sender).Return(true, nil).Once()

	var err error
	unittest.RequireReturnsBefore(s.T(), func() {
		err = checker.Check(context.Background(), signed, id, receipt.AllChecks)
	}, 200*time.Millisecond)

	failure, ok := receipt.AsCheckFailure(err)
	s.Require().True(ok, "unexpected result %v", err)
	s.Assert().Equal(receipt.CheckValue, failure.Check)
	s.Assert().True(receipt.IsContractError(err))
	s.Assert().ErrorIs(err, context.DeadlineExceeded)

	unittest.RequireReturnsBefore(s.T(), func() { <-released }, time.Second)
}

// TestCheckPassesWithoutFailures verifies that a receipt passing every check yields no error.
func (s *CheckerSuite) TestCheckPassesWithoutFailures() {
	signed := unittest.SignedReceiptFixture(s.domain, s.key)
	s.expect(signed, true, true, true, true)

	var err error
	s.Require().NotPanics(func() {
		err = s.checker.Check(context.Background(), signed, signed.ID(), receipt.AllChecks)
	})
	s.Assert().NoError(err)
}

// TestInvalidSignature verifies that an unrecoverable signature fails the signature check
// without querying the checks implementation.
func (s *CheckerSuite) TestInvalidSignature() {
	signed := unittest.SignedReceiptFixture(s.domain, s.key)
	signed.Signature[64] = 42

	next := receipt.NewCheckingReceipt(signed).PerformChecks(context.Background(), s.checker)
	failed, ok := next.(*receipt.FailedReceipt)
	s.Require().True(ok)

	failure, ok := receipt.AsCheckFailure(failed.Err())
	s.Require().True(ok)
	s.Assert().Equal(receipt.CheckSignature, failure.Check)
	s.Assert().True(eip712.IsSignatureError(failed.Err()))
	s.Assert().ErrorIs(failed.Err(), eip712.ErrInvalidSignature)
	s.checks.AssertNotCalled(s.T(), "IsUnique", mock.Anything, mock.Anything, mock.Anything)
}

// TestTamperedReceipt verifies that a receipt modified after signing is attributed to a
// different sender and fails the sender check.
func (s *CheckerSuite) TestTamperedReceipt() {
	signed := unittest.SignedReceiptFixture(s.domain, s.key)
	signed.Message.Value = *uint256.NewInt(1_000_000_000)
	id := signed.ID()

	s.checks.On("IsUnique", mock.Anything, signed, id).Return(true, nil).Once()
	s.checks.On("IsValidAllocationID", mock.Anything, mock.Anything).Return(true, nil).Once()
	s.checks.On("IsValidValue", mock.Anything, mock.Anything, id).Return(true, nil).Once()
	s.checks.On("IsValidSenderID", mock.Anything, mock.MatchedBy(func(a common.Address) bool {
		return a != s.sender
	})).Return(false, nil).Once()

	err := s.checker.Check(context.Background(), signed, id, receipt.AllChecks)
	failure, ok := receipt.AsCheckFailure(err)
	s.Require().True(ok)
	s.Assert().Equal(receipt.CheckSenderID, failure.Check)
}

// TestSubsetOfChecks verifies that only the requested checks are queried.
func (s *CheckerSuite) TestSubsetOfChecks() {
	signed := unittest.SignedReceiptFixture(s.domain, s.key)
	s.checks.On("IsValidAllocationID", mock.Anything, mock.Anything).Return(true, nil).Once()
	s.checks.On("IsValidValue", mock.Anything, mock.Anything, signed.ID()).Return(true, nil).Once()
	s.checks.On("IsValidSenderID", mock.Anything, s.sender).Return(true, nil).Once()

	err := s.checker.Check(context.Background(), signed, signed.ID(), receipt.ChecksWithout(receipt.CheckUnique))
	s.Require().NoError(err)
	s.checks.AssertNotCalled(s.T(), "IsUnique", mock.Anything, mock.Anything, mock.Anything)
}

// fixedChecks answers every query with a preset result.
type fixedChecks struct {
	unique, allocation, value, sender bool
}

func (f fixedChecks) IsUnique(context.Context, *tap.SignedReceipt, tap.ReceiptID) (bool, error) {
	return f.unique, nil
}

func (f fixedChecks) IsValidAllocationID(context.Context, common.Address) (bool, error) {
	return f.allocation, nil
}

func (f fixedChecks) IsValidValue(context.Context, *uint256.Int, tap.ReceiptID) (bool, error) {
	return f.value, nil
}

func (f fixedChecks) IsValidSenderID(context.Context, common.Address) (bool, error) {
	return f.sender, nil
}

// TestSingleTerminalOutcome verifies that the checks move a receipt to exactly one of Failed
// or AwaitingReserve, and that Failed records the highest-priority rejection.
func TestSingleTerminalOutcome(t *testing.T) {
	domain := unittest.DomainFixture()
	key := unittest.KeyFixture()

	rapid.Check(t, func(t *rapid.T) {
		checks := fixedChecks{
			unique:     rapid.Bool().Draw(t, "unique"),
			allocation: rapid.Bool().Draw(t, "allocation"),
			value:      rapid.Bool().Draw(t, "value"),
			sender:     rapid.Bool().Draw(t, "sender"),
		}
		checker := receipt.NewChecker(unittest.Logger(), domain, checks, 0)
		signed := unittest.SignedReceiptFixture(domain, key)

		next := receipt.NewCheckingReceipt(signed).PerformChecks(context.Background(), checker)

		var expected receipt.Check
		switch {
		case !checks.unique:
			expected = receipt.CheckUnique
		case !checks.allocation:
			expected = receipt.CheckAllocationID
		case !checks.value:
			expected = receipt.CheckValue
		case !checks.sender:
			expected = receipt.CheckSenderID
		}

		switch r := next.(type) {
		case *receipt.FailedReceipt:
			require.NotEmpty(t, expected)
			failure, ok := receipt.AsCheckFailure(r.Err())
			require.True(t, ok)
			require.Equal(t, expected, failure.Check)
		case *receipt.AwaitingReserveReceipt:
			require.Empty(t, expected)
		default:
			t.Fatalf("unexpected state %s", next.State())
		}
	})
}

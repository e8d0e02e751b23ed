package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chris/escrow-marketplace/pkg/escrow"
	"github.com/chris/escrow-marketplace/pkg/gateway"
	"github.com/chris/escrow-marketplace/pkg/models"
	"github.com/chris/escrow-marketplace/pkg/verification"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func decimalEq(s string) any {
	want := decimal.RequireFromString(s)
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(want) })
}

func TestInitializeFunding(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	e := f.create(t)

	f.payments.On("InitializePayment", mock.Anything, decimalEq("1035.00"), models.USD, e.EscrowRef).
		Return("https://pay.example.com/checkout/abc", nil).Once()

	session, err := f.svc.InitializeFunding(ctx, e.ID, buyerID)
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/checkout/abc", session.AuthorizationURL)
	assert.Equal(t, e.EscrowRef, session.Reference)
	assert.Equal(t, "35", session.Quote.BuyerFee.String())

	stored, err := f.store.GetEscrow(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)

	t.Run("Seller Cannot Initialize", func(t *testing.T) {
		_, err := f.svc.InitializeFunding(ctx, e.ID, sellerID)
		assert.ErrorIs(t, err, escrow.ErrForbidden)
	})
}

func TestFundEscrow(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newFixture(t)
		e := f.fund(t, f.create(t))

		assert.Equal(t, models.StatusFunded, e.Status)
		assert.True(t, e.ChatUnlocked())
		require.Len(t, e.Timeline, 1)
		assert.Equal(t, models.StatusFunded, e.Timeline[0].Status)
		assert.Equal(t, buyerID, e.Timeline[0].Actor)

		require.NotNil(t, e.Payment)
		assert.Equal(t, models.TierStarter, e.Payment.Tier)
		assert.Equal(t, "35", e.Payment.BuyerFee.String())
		assert.Equal(t, "35", e.Payment.SellerFee.String())
		assert.Equal(t, "1035", e.Payment.BuyerPays.String())
		assert.Equal(t, "965", e.Payment.SellerReceives.String())
		assert.Equal(t, "70", e.Payment.PlatformFee.String())
		assert.Equal(t, e.EscrowRef, e.Payment.Reference)

		stored, err := f.store.GetEscrow(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, e.Payment.Reference, stored.Payment.Reference)
	})

	t.Run("Snapshot Survives Tier Change", func(t *testing.T) {
		f := newFixture(t)
		e := f.fund(t, f.create(t))

		b := activeUser(buyerID, "buyer@example.com")
		b.Tier = models.TierFree
		f.store.PutUser(b)

		stored, err := f.store.GetEscrow(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, models.TierStarter, stored.Payment.Tier)
		assert.Equal(t, "35", stored.Payment.BuyerFee.String())
	})

	tests := []struct {
		name    string
		actor   string
		verify  func(f *fixture, ref string)
		wantErr []error
	}{
		{
			name:  "Gateway Unavailable",
			actor: buyerID,
			verify: func(f *fixture, ref string) {
				f.payments.On("VerifyPayment", mock.Anything, ref).
					Return(gateway.PaymentVerification{}, &gateway.UpstreamError{Provider: "payments", Op: "verify", StatusCode: 503}).Once()
			},
			wantErr: []error{gateway.ErrUpstreamUnavailable},
		},
		{
			name:  "Payment Not Confirmed",
			actor: buyerID,
			verify: func(f *fixture, ref string) {
				v := paid(ref, "1035.00")
				v.Success = false
				f.payments.On("VerifyPayment", mock.Anything, ref).Return(v, nil).Once()
			},
			wantErr: []error{escrow.ErrInvalidTransition, ErrPaymentNotVerified},
		},
		{
			name:  "Wrong Currency",
			actor: buyerID,
			verify: func(f *fixture, ref string) {
				v := paid(ref, "1035.00")
				v.Currency = models.EUR
				f.payments.On("VerifyPayment", mock.Anything, ref).Return(v, nil).Once()
			},
			wantErr: []error{ErrPaymentNotVerified},
		},
		{
			name:  "Underpaid",
			actor: buyerID,
			verify: func(f *fixture, ref string) {
				f.payments.On("VerifyPayment", mock.Anything, ref).Return(paid(ref, "1000.00"), nil).Once()
			},
			wantErr: []error{escrow.ErrUnderpaid},
		},
		{
			name:  "Gateway Reports Another Reference",
			actor: buyerID,
			verify: func(f *fixture, ref string) {
				f.payments.On("VerifyPayment", mock.Anything, ref).Return(paid("ESC-OTHER", "1035.00"), nil).Once()
			},
			wantErr: []error{escrow.ErrInvalidTransition, ErrReferenceMismatch},
		},
		{
			name:    "Seller Cannot Fund",
			actor:   sellerID,
			wantErr: []error{escrow.ErrForbidden},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			e := f.create(t)
			if tc.verify != nil {
				tc.verify(f, e.EscrowRef)
			}

			_, err := f.svc.FundEscrow(ctx, e.ID, tc.actor, e.EscrowRef)
			for _, target := range tc.wantErr {
				assert.ErrorIs(t, err, target)
			}

			stored, err := f.store.GetEscrow(ctx, e.ID)
			require.NoError(t, err)
			assert.Equal(t, models.StatusPending, stored.Status)
			assert.Equal(t, int64(1), stored.Version)
			assert.Nil(t, stored.Payment)
			assert.Empty(t, stored.Timeline)
			assert.Empty(t, f.events.Events())
		})
	}

	t.Run("Buyer Lost Verification", func(t *testing.T) {
		f := newFixture(t)
		e := f.create(t)
		b := activeUser(buyerID, "buyer@example.com")
		b.AccountStatus = models.AccountSuspended
		f.store.PutUser(b)

		_, err := f.svc.FundEscrow(ctx, e.ID, buyerID, e.EscrowRef)
		var denied *verification.DeniedError
		require.ErrorAs(t, err, &denied)
		assert.Equal(t, verification.StepAccount, denied.Decision.Step)
	})

	t.Run("Missing Reference", func(t *testing.T) {
		f := newFixture(t)
		e := f.create(t)
		_, err := f.svc.FundEscrow(ctx, e.ID, buyerID, "  ")
		assert.ErrorIs(t, err, escrow.ErrValidation)
	})

	t.Run("Cannot Fund Twice", func(t *testing.T) {
		f := newFixture(t)
		e := f.fund(t, f.create(t))
		_, err := f.svc.FundEscrow(ctx, e.ID, buyerID, e.EscrowRef)
		assert.ErrorIs(t, err, escrow.ErrInvalidTransition)
	})

	t.Run("Payment For Another Escrow Is Refused", func(t *testing.T) {
		f := newFixture(t)
		first := f.fund(t, f.create(t))
		second := f.create(t)

		_, err := f.svc.FundEscrow(ctx, second.ID, buyerID, first.EscrowRef)
		assert.ErrorIs(t, err, ErrReferenceMismatch)

		stored, err := f.store.GetEscrow(ctx, second.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, stored.Status)
		assert.Nil(t, stored.Payment)
	})
}

func TestSubmitDelivery(t *testing.T) {
	ctx := context.Background()

	t.Run("Schedules Auto Release", func(t *testing.T) {
		f := newFixture(t)
		e := f.fund(t, f.create(t))
		due := t0.Add(72 * time.Hour)
		f.sched.On("ScheduleAutoRelease", mock.Anything, e.ID, mock.MatchedBy(func(at time.Time) bool { return at.Equal(due) })).
			Return(nil).Once()

		next, err := f.svc.SubmitDelivery(ctx, e.ID, sellerID, models.DeliveryProof{
			Method:   models.DeliveryDigital,
			Evidence: []models.Evidence{{URL: "https://files.example.com/build.zip"}},
		})
		require.NoError(t, err)
		assert.Equal(t, models.StatusDelivered, next.Status)
		require.Len(t, next.Timeline, 2)
		assert.Equal(t, models.StatusDelivered, next.Timeline[1].Status)
		require.NotNil(t, next.Delivery.AutoReleaseAt)
		assert.True(t, next.Delivery.AutoReleaseAt.Equal(due))
	})

	t.Run("Scheduler Failure Keeps Transition", func(t *testing.T) {
		f := newFixture(t)
		e := f.fund(t, f.create(t))
		f.sched.On("ScheduleAutoRelease", mock.Anything, e.ID, mock.Anything).Return(errors.New("queue down")).Once()

		next, err := f.svc.SubmitDelivery(ctx, e.ID, sellerID, models.DeliveryProof{Method: models.DeliveryService, Note: "installed"})
		require.NoError(t, err)
		assert.Equal(t, models.StatusDelivered, next.Status)
	})

	t.Run("Proof Must Match Method", func(t *testing.T) {
		f := newFixture(t)
		e := f.fund(t, f.create(t))
		_, err := f.svc.SubmitDelivery(ctx, e.ID, sellerID, models.DeliveryProof{Method: models.DeliveryShipping, Carrier: "UPS"})
		assert.ErrorIs(t, err, escrow.ErrInvalidDeliveryProof)
	})
}

func TestConfirmDelivery(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	e := f.deliver(t, f.fund(t, f.create(t)))

	_, err := f.svc.ConfirmDelivery(ctx, e.ID, sellerID)
	assert.ErrorIs(t, err, escrow.ErrForbidden)

	done, err := f.svc.ConfirmDelivery(ctx, e.ID, buyerID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, done.Status)
	assert.False(t, done.Delivery.AutoReleased)
	require.NotNil(t, done.Delivery.ConfirmedAt)
}

func TestAutoRelease(t *testing.T) {
	ctx := context.Background()

	t.Run("Not Due Then Released Then Skipped", func(t *testing.T) {
		f := newFixture(t)
		e := f.deliver(t, f.fund(t, f.create(t)))

		res, err := f.svc.AutoRelease(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, NotDue, res.Outcome)
		require.NotNil(t, res.DueAt)
		assert.True(t, res.DueAt.Equal(t0.Add(72*time.Hour)))

		f.clock.Advance(72 * time.Hour)
		res, err = f.svc.AutoRelease(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, Released, res.Outcome)
		assert.Equal(t, models.StatusCompleted, res.Escrow.Status)
		assert.True(t, res.Escrow.Delivery.AutoReleased)
		assert.Equal(t, models.SystemActor, res.Escrow.Timeline[len(res.Escrow.Timeline)-1].Actor)

		res, err = f.svc.AutoRelease(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, Skipped, res.Outcome)

		stored, err := f.store.GetEscrow(ctx, e.ID)
		require.NoError(t, err)
		assert.Len(t, stored.Timeline, 3)
	})

	t.Run("Disputed Is Skipped", func(t *testing.T) {
		f := newFixture(t)
		e := f.deliver(t, f.fund(t, f.create(t)))
		_, err := f.svc.RaiseDispute(ctx, e.ID, buyerID, "wrong item", nil)
		require.NoError(t, err)

		f.clock.Advance(100 * time.Hour)
		res, err := f.svc.AutoRelease(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, Skipped, res.Outcome)
	})
}

func TestReleaseOverdue(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	early := f.deliver(t, f.fund(t, f.create(t)))
	f.clock.Advance(24 * time.Hour)
	late := f.deliver(t, f.fund(t, f.create(t)))
	f.clock.Advance(48 * time.Hour)

	released, err := f.svc.ReleaseOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, released)

	got, err := f.store.GetEscrow(ctx, early.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)
	got, err = f.store.GetEscrow(ctx, late.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, got.Status)

	released, err = f.svc.ReleaseOverdue(ctx)
	require.NoError(t, err)
	assert.Zero(t, released)
}

func settled(ref, amount string) gateway.Transfer {
	return gateway.Transfer{
		Reference: ref,
		Status:    gateway.TransferSuccess,
		Amount:    decimal.RequireFromString(amount),
		Currency:  models.USD,
		PaidAt:    t0,
	}
}

func TestPayout(t *testing.T) {
	ctx := context.Background()

	t.Run("Pending Then Confirmed", func(t *testing.T) {
		f := newFixture(t)
		e := f.complete(t)
		ref := PayoutReference(e)

		f.payouts.On("InitiateTransfer", mock.Anything, mock.MatchedBy(func(r gateway.TransferRequest) bool {
			return r.Reference == ref && r.Amount.Equal(decimal.RequireFromString("965")) &&
				r.Currency == models.USD && r.Destination.ID == "pa-1"
		})).Return(gateway.Transfer{Reference: ref, Status: gateway.TransferPending}, nil).Once()

		transfer, err := f.svc.RequestPayout(ctx, e.ID, sellerID)
		require.NoError(t, err)
		assert.Equal(t, gateway.TransferPending, transfer.Status)

		stored, err := f.store.GetEscrow(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, stored.Status)

		f.payouts.On("VerifyTransfer", mock.Anything, ref).Return(settled(ref, "965.00"), nil).Once()
		paidOut, err := f.svc.ConfirmPayout(ctx, e.ID, ref)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPaidOut, paidOut.Status)
		require.NotNil(t, paidOut.Payout)
		assert.Equal(t, ref, paidOut.Payout.Reference)
	})

	t.Run("Settles Immediately", func(t *testing.T) {
		f := newFixture(t)
		e := f.complete(t)
		ref := PayoutReference(e)
		f.payouts.On("InitiateTransfer", mock.Anything, mock.Anything).Return(settled(ref, "965"), nil).Once()

		_, err := f.svc.RequestPayout(ctx, e.ID, sellerID)
		require.NoError(t, err)

		stored, err := f.store.GetEscrow(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPaidOut, stored.Status)
	})

	t.Run("Transfer Still Pending", func(t *testing.T) {
		f := newFixture(t)
		e := f.complete(t)
		ref := PayoutReference(e)
		f.payouts.On("VerifyTransfer", mock.Anything, ref).Return(gateway.Transfer{Reference: ref, Status: gateway.TransferPending}, nil).Once()

		_, err := f.svc.ConfirmPayout(ctx, e.ID, ref)
		assert.ErrorIs(t, err, ErrTransferNotSettled)
	})

	t.Run("Amount Mismatch", func(t *testing.T) {
		f := newFixture(t)
		e := f.complete(t)
		ref := PayoutReference(e)
		f.payouts.On("VerifyTransfer", mock.Anything, ref).Return(settled(ref, "1000"), nil).Once()

		_, err := f.svc.ConfirmPayout(ctx, e.ID, ref)
		assert.ErrorIs(t, err, escrow.ErrPayoutMismatch)
	})

	t.Run("Unrelated Transfer Is Refused", func(t *testing.T) {
		f := newFixture(t)
		e := f.complete(t)

		_, err := f.svc.ConfirmPayout(ctx, e.ID, "TRF-9")
		assert.ErrorIs(t, err, ErrReferenceMismatch)
		f.payouts.AssertNotCalled(t, "VerifyTransfer", mock.Anything, "TRF-9")

		stored, err := f.store.GetEscrow(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, stored.Status)
	})

	t.Run("Provider Returns Another Transfer", func(t *testing.T) {
		f := newFixture(t)
		e := f.complete(t)
		f.payouts.On("InitiateTransfer", mock.Anything, mock.Anything).Return(settled("TRF-9", "965"), nil).Once()

		_, err := f.svc.RequestPayout(ctx, e.ID, sellerID)
		assert.ErrorIs(t, err, ErrReferenceMismatch)

		stored, err := f.store.GetEscrow(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, stored.Status)
	})

	t.Run("Buyer Cannot Request", func(t *testing.T) {
		f := newFixture(t)
		e := f.complete(t)
		_, err := f.svc.RequestPayout(ctx, e.ID, buyerID)
		assert.ErrorIs(t, err, escrow.ErrForbidden)
	})

	t.Run("Seller Without Payout Account", func(t *testing.T) {
		f := newFixture(t)
		e := f.complete(t)
		f.store.PutUser(activeUser(sellerID, "seller@example.com"))

		_, err := f.svc.RequestPayout(ctx, e.ID, sellerID)
		var denied *verification.DeniedError
		require.ErrorAs(t, err, &denied)
		assert.Equal(t, verification.StepPayoutDestination, denied.Decision.Step)
		assert.Equal(t, verification.ActionAddPayoutAccount, denied.Decision.RequiredAction)
	})

	t.Run("Not Completed", func(t *testing.T) {
		f := newFixture(t)
		e := f.fund(t, f.create(t))
		_, err := f.svc.RequestPayout(ctx, e.ID, sellerID)
		assert.ErrorIs(t, err, escrow.ErrInvalidTransition)
	})
}

func TestDisputeFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	e := f.fund(t, f.create(t))

	disputed, err := f.svc.RaiseDispute(ctx, e.ID, buyerID, "item never arrived", []models.Evidence{{URL: "https://img.example.com/1.png"}})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDisputed, disputed.Status)
	assert.True(t, disputed.Dispute.IsDisputed)
	disputeID := disputed.Dispute.DisputeID
	require.NotEmpty(t, disputeID)

	_, err = f.svc.ConfirmDelivery(ctx, e.ID, buyerID)
	assert.ErrorIs(t, err, escrow.ErrDisputeOpen)

	d, err := f.svc.GetDispute(ctx, disputeID, sellerID)
	require.NoError(t, err)
	assert.Equal(t, buyerID, d.ReportedBy)
	assert.Equal(t, sellerID, d.ReportedUser)
	assert.Len(t, d.Evidence, 1)

	_, err = f.svc.GetDispute(ctx, disputeID, strangerID)
	assert.ErrorIs(t, err, escrow.ErrForbidden)

	_, err = f.svc.AssignDispute(ctx, disputeID, strangerID)
	assert.ErrorIs(t, err, escrow.ErrForbidden)

	assigned, err := f.svc.AssignDispute(ctx, disputeID, adminID)
	require.NoError(t, err)
	assert.Equal(t, models.DisputeUnderReview, assigned.Status)
	assert.Equal(t, adminID, assigned.AssignedTo)

	reassigned, err := f.svc.AssignDispute(ctx, disputeID, adminID)
	require.NoError(t, err)
	assert.Equal(t, assigned.Version+1, reassigned.Version)

	thirty := decimal.NewFromInt(30)
	resolved, err := f.svc.ResolveDispute(ctx, disputeID, adminID, ResolveDisputeRequest{
		Resolution:       "partial delivery",
		Winner:           models.WinnerSplit,
		RefundPercentage: &thirty,
	})
	require.NoError(t, err)
	assert.Equal(t, models.DisputeResolved, resolved.Status)
	require.NotNil(t, resolved.Resolution)
	assert.Equal(t, "300", resolved.Resolution.RefundAmount.String())
	assert.Equal(t, "700", resolved.Resolution.ReleaseAmount.String())

	stored, err := f.store.GetEscrow(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, stored.Status)
	assert.Equal(t, models.DisputeResolved, stored.Dispute.Status)

	_, err = f.svc.AssignDispute(ctx, disputeID, adminID)
	assert.ErrorIs(t, err, escrow.ErrAlreadyResolved)
	_, err = f.svc.ResolveDispute(ctx, disputeID, adminID, ResolveDisputeRequest{Resolution: "again", Winner: models.WinnerRefund})
	assert.ErrorIs(t, err, escrow.ErrAlreadyResolved)

	f.payouts.On("InitiateTransfer", mock.Anything, mock.MatchedBy(func(r gateway.TransferRequest) bool {
		return r.Amount.Equal(decimal.RequireFromString("665"))
	})).Return(gateway.Transfer{Reference: PayoutReference(stored), Status: gateway.TransferPending}, nil).Once()
	_, err = f.svc.RequestPayout(ctx, e.ID, sellerID)
	require.NoError(t, err)
}

func TestResolveDispute_RefundCancels(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	e := f.deliver(t, f.fund(t, f.create(t)))
	disputed, err := f.svc.RaiseDispute(ctx, e.ID, sellerID, "buyer will not confirm", nil)
	require.NoError(t, err)

	resolved, err := f.svc.ResolveDispute(ctx, disputed.Dispute.DisputeID, adminID, ResolveDisputeRequest{
		Resolution: "item damaged in transit",
		Winner:     models.WinnerReportedUser,
	})
	require.NoError(t, err)
	assert.Equal(t, "100", resolved.Resolution.RefundPercentage.String())

	stored, err := f.store.GetEscrow(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, stored.Status)
	require.NotNil(t, stored.Cancellation)
	assert.True(t, stored.Cancellation.RefundDue)
	assert.Equal(t, adminID, stored.Timeline[len(stored.Timeline)-1].Actor)
}

func TestResolveDispute_PartialRefundCompletes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	e := f.deliver(t, f.fund(t, f.create(t)))
	disputed, err := f.svc.RaiseDispute(ctx, e.ID, buyerID, "one item missing", nil)
	require.NoError(t, err)

	forty := decimal.NewFromInt(40)
	_, err = f.svc.ResolveDispute(ctx, disputed.Dispute.DisputeID, adminID, ResolveDisputeRequest{
		Resolution:       "refund the missing item",
		Winner:           models.WinnerRefund,
		RefundPercentage: &forty,
	})
	require.NoError(t, err)

	stored, err := f.store.GetEscrow(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, stored.Status)

	ref := PayoutReference(stored)
	f.payouts.On("InitiateTransfer", mock.Anything, mock.MatchedBy(func(r gateway.TransferRequest) bool {
		return r.Amount.Equal(decimal.RequireFromString("565"))
	})).Return(settled(ref, "565"), nil).Once()

	_, err = f.svc.RequestPayout(ctx, e.ID, sellerID)
	require.NoError(t, err)

	stored, err = f.store.GetEscrow(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaidOut, stored.Status)
}

func TestRaiseDispute_Guards(t *testing.T) {
	ctx := context.Background()

	t.Run("Pending Cannot Be Disputed", func(t *testing.T) {
		f := newFixture(t)
		e := f.create(t)
		_, err := f.svc.RaiseDispute(ctx, e.ID, buyerID, "no", nil)
		assert.ErrorIs(t, err, escrow.ErrInvalidTransition)
	})

	t.Run("Outsider", func(t *testing.T) {
		f := newFixture(t)
		e := f.fund(t, f.create(t))
		_, err := f.svc.RaiseDispute(ctx, e.ID, strangerID, "spam", nil)
		assert.ErrorIs(t, err, escrow.ErrForbidden)
	})

	t.Run("Reason Required", func(t *testing.T) {
		f := newFixture(t)
		e := f.fund(t, f.create(t))
		_, err := f.svc.RaiseDispute(ctx, e.ID, buyerID, "   ", nil)
		assert.ErrorIs(t, err, escrow.ErrValidation)
	})
}

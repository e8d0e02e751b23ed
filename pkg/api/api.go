// Package api provides the HTTP types and chi server bindings of the escrow API.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Defines values for EscrowStatus.
const (
	Accepted  EscrowStatus = "accepted"
	Cancelled EscrowStatus = "cancelled"
	Completed EscrowStatus = "completed"
	Delivered EscrowStatus = "delivered"
	Disputed  EscrowStatus = "disputed"
	Funded    EscrowStatus = "funded"
	PaidOut   EscrowStatus = "paid_out"
	Pending   EscrowStatus = "pending"
)

// Defines values for DisputeStatus.
const (
	DisputeStatusOpen        DisputeStatus = "open"
	DisputeStatusResolved    DisputeStatus = "resolved"
	DisputeStatusUnderReview DisputeStatus = "under_review"
)

// Defines values for DeliveryMethod.
const (
	Digital  DeliveryMethod = "digital"
	Service  DeliveryMethod = "service"
	Shipping DeliveryMethod = "shipping"
)

// Defines values for DisputeWinner.
const (
	Refund       DisputeWinner = "refund"
	ReportedBy   DisputeWinner = "reportedBy"
	ReportedUser DisputeWinner = "reportedUser"
	Split        DisputeWinner = "split"
)

// EscrowStatus defines model for EscrowStatus.
type EscrowStatus string

// DisputeStatus defines model for DisputeStatus.
type DisputeStatus string

// DeliveryMethod defines model for DeliveryMethod.
type DeliveryMethod string

// DisputeWinner defines model for DisputeWinner.
type DisputeWinner string

// Error defines model for Error.
type Error struct {
	Code            string  `json:"code"`
	CurrentStatus   *string `json:"current_status,omitempty"`
	Error           string  `json:"error"`
	KycStatus       *string `json:"kyc_status,omitempty"`
	Reason          *string `json:"reason,omitempty"`
	RequiredAction  *string `json:"required_action,omitempty"`
	Step            *int    `json:"step,omitempty"`
	TargetStatus    *string `json:"target_status,omitempty"`
	UpgradeRequired *bool   `json:"upgrade_required,omitempty"`
}

// NewEscrow defines model for NewEscrow.
type NewEscrow struct {
	Amount      string              `json:"amount"`
	Currency    string              `json:"currency"`
	Description *string             `json:"description,omitempty"`
	SellerEmail openapi_types.Email `json:"seller_email"`
	Title       string              `json:"title"`
}

// FeeBreakdown defines model for FeeBreakdown.
type FeeBreakdown struct {
	Amount           string `json:"amount"`
	BuyerFee         string `json:"buyer_fee"`
	BuyerFeePercent  string `json:"buyer_fee_percent"`
	BuyerPays        string `json:"buyer_pays"`
	Currency         string `json:"currency"`
	PlatformFee      string `json:"platform_fee"`
	SellerFee        string `json:"seller_fee"`
	SellerFeePercent string `json:"seller_fee_percent"`
	SellerReceives   string `json:"seller_receives"`
	Tier             string `json:"tier"`
}

// Payment defines model for Payment.
type Payment struct {
	FeeBreakdown
	AmountPaid string    `json:"amount_paid"`
	PaidAt     time.Time `json:"paid_at"`
	Reference  string    `json:"reference"`
}

// TimelineEntry defines model for TimelineEntry.
type TimelineEntry struct {
	Actor     string       `json:"actor"`
	Id        string       `json:"id"`
	Note      *string      `json:"note,omitempty"`
	Status    EscrowStatus `json:"status"`
	Timestamp time.Time    `json:"timestamp"`
}

// Evidence defines model for Evidence.
type Evidence struct {
	Description *string `json:"description,omitempty"`
	Url         string  `json:"url"`
}

// DeliveryProof defines model for DeliveryProof.
type DeliveryProof struct {
	Carrier        *string        `json:"carrier,omitempty"`
	Evidence       *[]Evidence    `json:"evidence,omitempty"`
	Method         DeliveryMethod `json:"method"`
	Note           *string        `json:"note,omitempty"`
	TrackingNumber *string        `json:"tracking_number,omitempty"`
}

// Delivery defines model for Delivery.
type Delivery struct {
	AutoReleaseAt  *time.Time      `json:"auto_release_at,omitempty"`
	AutoReleased   bool            `json:"auto_released"`
	Carrier        *string         `json:"carrier,omitempty"`
	ConfirmedAt    *time.Time      `json:"confirmed_at,omitempty"`
	Evidence       *[]Evidence     `json:"evidence,omitempty"`
	Method         *DeliveryMethod `json:"method,omitempty"`
	Note           *string         `json:"note,omitempty"`
	SubmittedAt    *time.Time      `json:"submitted_at,omitempty"`
	TrackingNumber *string         `json:"tracking_number,omitempty"`
}

// Resolution defines model for Resolution.
type Resolution struct {
	Decision         string        `json:"decision"`
	RefundAmount     string        `json:"refund_amount"`
	RefundPercentage string        `json:"refund_percentage"`
	ReleaseAmount    string        `json:"release_amount"`
	ResolvedAt       time.Time     `json:"resolved_at"`
	ResolvedBy       string        `json:"resolved_by"`
	Winner           DisputeWinner `json:"winner"`
}

// DisputeSummary defines model for DisputeSummary.
type DisputeSummary struct {
	DisputeId  *string        `json:"dispute_id,omitempty"`
	IsDisputed bool           `json:"is_disputed"`
	RaisedBy   *string        `json:"raised_by,omitempty"`
	Reason     *string        `json:"reason,omitempty"`
	Resolution *Resolution    `json:"resolution,omitempty"`
	Status     *DisputeStatus `json:"status,omitempty"`
}

// Cancellation defines model for Cancellation.
type Cancellation struct {
	At        time.Time `json:"at"`
	By        string    `json:"by"`
	Reason    *string   `json:"reason,omitempty"`
	RefundDue bool      `json:"refund_due"`
}

// Payout defines model for Payout.
type Payout struct {
	Amount    string    `json:"amount"`
	Currency  string    `json:"currency"`
	PaidAt    time.Time `json:"paid_at"`
	Reference string    `json:"reference"`
}

// Escrow defines model for Escrow.
type Escrow struct {
	Amount       string          `json:"amount"`
	BuyerId      string          `json:"buyer_id"`
	Cancellation *Cancellation   `json:"cancellation,omitempty"`
	ChatUnlocked bool            `json:"chat_unlocked"`
	CreatedAt    time.Time       `json:"created_at"`
	Currency     string          `json:"currency"`
	Delivery     Delivery        `json:"delivery"`
	Description  *string         `json:"description,omitempty"`
	Dispute      DisputeSummary  `json:"dispute"`
	EscrowRef    string          `json:"escrow_ref"`
	Id           string          `json:"id"`
	Payment      *Payment        `json:"payment,omitempty"`
	Payout       *Payout         `json:"payout,omitempty"`
	SellerId     string          `json:"seller_id"`
	Status       EscrowStatus    `json:"status"`
	Timeline     []TimelineEntry `json:"timeline"`
	Title        string          `json:"title"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Version      int64           `json:"version"`
}

// FundEscrowRequest defines model for FundEscrowRequest.
type FundEscrowRequest struct {
	PaymentReference string `json:"payment_reference"`
}

// FundingSession defines model for FundingSession.
type FundingSession struct {
	AuthorizationUrl string       `json:"authorization_url"`
	Quote            FeeBreakdown `json:"quote"`
	Reference        string       `json:"reference"`
}

// CancelEscrowRequest defines model for CancelEscrowRequest.
type CancelEscrowRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// Transfer defines model for Transfer.
type Transfer struct {
	Amount    *string    `json:"amount,omitempty"`
	Currency  *string    `json:"currency,omitempty"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
	Reference string     `json:"reference"`
	Status    string     `json:"status"`
}

// ConfirmPayoutRequest defines model for ConfirmPayoutRequest.
type ConfirmPayoutRequest struct {
	TransferReference string `json:"transfer_reference"`
}

// NewDispute defines model for NewDispute.
type NewDispute struct {
	Evidence *[]Evidence `json:"evidence,omitempty"`
	Reason   string      `json:"reason"`
}

// Dispute defines model for Dispute.
type Dispute struct {
	AssignedAt   *time.Time    `json:"assigned_at,omitempty"`
	AssignedTo   *string       `json:"assigned_to,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	EscrowId     string        `json:"escrow_id"`
	Evidence     *[]Evidence   `json:"evidence,omitempty"`
	Id           string        `json:"id"`
	Reason       string        `json:"reason"`
	ReportedBy   string        `json:"reported_by"`
	ReportedUser string        `json:"reported_user"`
	Resolution   *Resolution   `json:"resolution,omitempty"`
	Status       DisputeStatus `json:"status"`
	UpdatedAt    time.Time     `json:"updated_at"`
	Version      int64         `json:"version"`
}

// ResolveDisputeRequest defines model for ResolveDisputeRequest.
type ResolveDisputeRequest struct {
	RefundPercentage *string       `json:"refund_percentage,omitempty"`
	Resolution       string        `json:"resolution"`
	Winner           DisputeWinner `json:"winner"`
}

// FeeRate defines model for FeeRate.
type FeeRate struct {
	Buyer  string `json:"buyer"`
	Seller string `json:"seller"`
}

// TierPrice defines model for TierPrice.
type TierPrice struct {
	Currency                string  `json:"currency"`
	FeePercent              FeeRate `json:"fee_percent"`
	MaxTransactionAmount    string  `json:"max_transaction_amount"`
	MaxTransactionsPerMonth int     `json:"max_transactions_per_month"`
	MonthlyCost             string  `json:"monthly_cost"`
	Name                    string  `json:"name"`
	SetupFee                string  `json:"setup_fee"`
	Tier                    string  `json:"tier"`
}

// GateDecision defines model for GateDecision.
type GateDecision struct {
	Allowed              bool    `json:"allowed"`
	KycStatus            *string `json:"kyc_status,omitempty"`
	Reason               *string `json:"reason,omitempty"`
	RequiredAction       *string `json:"required_action,omitempty"`
	RequiresVerification *string `json:"requires_verification,omitempty"`
	Step                 *int    `json:"step,omitempty"`
	UpgradeRequired      *bool   `json:"upgrade_required,omitempty"`
}

// VerificationStatus defines model for VerificationStatus.
type VerificationStatus struct {
	Access                GateDecision `json:"access"`
	CreateTransaction     GateDecision `json:"create_transaction"`
	EmailVerified         bool         `json:"email_verified"`
	KycStatus             string       `json:"kyc_status"`
	KycVerified           bool         `json:"kyc_verified"`
	ReceivePayouts        GateDecision `json:"receive_payouts"`
	Tier                  string       `json:"tier"`
	TransactionsThisMonth int          `json:"transactions_this_month"`
	UserId                string       `json:"user_id"`
}

// ListTiersParams defines parameters for ListTiers.
type ListTiersParams struct {
	Currency *string `form:"currency,omitempty" json:"currency,omitempty"`
}

// QuoteFeesParams defines parameters for QuoteFees.
type QuoteFeesParams struct {
	Amount   string  `form:"amount" json:"amount"`
	Currency string  `form:"currency" json:"currency"`
	Tier     *string `form:"tier,omitempty" json:"tier,omitempty"`
}

// CreateEscrowJSONRequestBody defines body for CreateEscrow for application/json ContentType.
type CreateEscrowJSONRequestBody = NewEscrow

// FundEscrowJSONRequestBody defines body for FundEscrow for application/json ContentType.
type FundEscrowJSONRequestBody = FundEscrowRequest

// SubmitDeliveryJSONRequestBody defines body for SubmitDelivery for application/json ContentType.
type SubmitDeliveryJSONRequestBody = DeliveryProof

// CancelEscrowJSONRequestBody defines body for CancelEscrow for application/json ContentType.
type CancelEscrowJSONRequestBody = CancelEscrowRequest

// ConfirmPayoutJSONRequestBody defines body for ConfirmPayout for application/json ContentType.
type ConfirmPayoutJSONRequestBody = ConfirmPayoutRequest

// RaiseDisputeJSONRequestBody defines body for RaiseDispute for application/json ContentType.
type RaiseDisputeJSONRequestBody = NewDispute

// ResolveDisputeJSONRequestBody defines body for ResolveDispute for application/json ContentType.
type ResolveDisputeJSONRequestBody = ResolveDisputeRequest

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// List the caller's escrows
	// (GET /escrows)
	ListEscrows(w http.ResponseWriter, r *http.Request)
	// Create a pending escrow
	// (POST /escrows)
	CreateEscrow(w http.ResponseWriter, r *http.Request)
	// Get an escrow
	// (GET /escrows/{escrowId})
	GetEscrow(w http.ResponseWriter, r *http.Request, escrowId openapi_types.UUID)
	// Seller accepts the escrow
	// (POST /escrows/{escrowId}/accept)
	AcceptEscrow(w http.ResponseWriter, r *http.Request, escrowId openapi_types.UUID)
	// Start a payment session for the buyer
	// (POST /escrows/{escrowId}/funding)
	InitializeFunding(w http.ResponseWriter, r *http.Request, escrowId openapi_types.UUID)
	// Record a verified payment
	// (POST /escrows/{escrowId}/fund)
	FundEscrow(w http.ResponseWriter, r *http.Request, escrowId openapi_types.UUID)
	// Seller submits delivery proof
	// (POST /escrows/{escrowId}/delivery)
	SubmitDelivery(w http.ResponseWriter, r *http.Request, escrowId openapi_types.UUID)
	// Buyer confirms delivery
	// (POST /escrows/{escrowId}/confirm)
	ConfirmDelivery(w http.ResponseWriter, r *http.Request, escrowId openapi_types.UUID)
	// Cancel before delivery
	// (POST /escrows/{escrowId}/cancel)
	CancelEscrow(w http.ResponseWriter, r *http.Request, escrowId openapi_types.UUID)
	// Seller requests payout
	// (POST /escrows/{escrowId}/payout)
	RequestPayout(w http.ResponseWriter, r *http.Request, escrowId openapi_types.UUID)
	// Payout provider completion callback
	// (POST /escrows/{escrowId}/payout/confirm)
	ConfirmPayout(w http.ResponseWriter, r *http.Request, escrowId openapi_types.UUID)
	// Raise a dispute
	// (POST /escrows/{escrowId}/disputes)
	RaiseDispute(w http.ResponseWriter, r *http.Request, escrowId openapi_types.UUID)
	// Get a dispute
	// (GET /disputes/{disputeId})
	GetDispute(w http.ResponseWriter, r *http.Request, disputeId openapi_types.UUID)
	// Assign a dispute to the calling admin
	// (POST /disputes/{disputeId}/assign)
	AssignDispute(w http.ResponseWriter, r *http.Request, disputeId openapi_types.UUID)
	// Resolve a dispute
	// (POST /disputes/{disputeId}/resolve)
	ResolveDispute(w http.ResponseWriter, r *http.Request, disputeId openapi_types.UUID)
	// Quote fees for a prospective escrow
	// (GET /fees/quote)
	QuoteFees(w http.ResponseWriter, r *http.Request, params QuoteFeesParams)
	// Tier pricing
	// (GET /tiers)
	ListTiers(w http.ResponseWriter, r *http.Request, params ListTiersParams)
	// The caller's verification status
	// (GET /me/verification)
	GetVerificationStatus(w http.ResponseWriter, r *http.Request)
}

// ServerInterfaceWrapper converts contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

type MiddlewareFunc func(http.Handler) http.Handler

func (siw *ServerInterfaceWrapper) serve(w http.ResponseWriter, r *http.Request, fn http.HandlerFunc) {
	handler := http.Handler(fn)
	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}
	handler.ServeHTTP(w, r)
}

func (siw *ServerInterfaceWrapper) pathUUID(w http.ResponseWriter, r *http.Request, name string) (openapi_types.UUID, bool) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &id, runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: name, Err: err})
		return id, false
	}
	return id, true
}

// escrowOp adapts a handler method taking an escrow id.
func (siw *ServerInterfaceWrapper) escrowOp(op func(http.ResponseWriter, *http.Request, openapi_types.UUID)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		escrowId, ok := siw.pathUUID(w, r, "escrowId")
		if !ok {
			return
		}
		siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
			op(w, r, escrowId)
		})
	}
}

// disputeOp adapts a handler method taking a dispute id.
func (siw *ServerInterfaceWrapper) disputeOp(op func(http.ResponseWriter, *http.Request, openapi_types.UUID)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		disputeId, ok := siw.pathUUID(w, r, "disputeId")
		if !ok {
			return
		}
		siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
			op(w, r, disputeId)
		})
	}
}

// ListEscrows operation middleware
func (siw *ServerInterfaceWrapper) ListEscrows(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.ListEscrows)
}

// CreateEscrow operation middleware
func (siw *ServerInterfaceWrapper) CreateEscrow(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.CreateEscrow)
}

// GetVerificationStatus operation middleware
func (siw *ServerInterfaceWrapper) GetVerificationStatus(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.GetVerificationStatus)
}

// QuoteFees operation middleware
func (siw *ServerInterfaceWrapper) QuoteFees(w http.ResponseWriter, r *http.Request) {
	var err error
	var params QuoteFeesParams

	if paramValue := r.URL.Query().Get("amount"); paramValue == "" {
		siw.ErrorHandlerFunc(w, r, &RequiredParamError{ParamName: "amount"})
		return
	}
	err = runtime.BindQueryParameter("form", true, true, "amount", r.URL.Query(), &params.Amount)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "amount", Err: err})
		return
	}

	if paramValue := r.URL.Query().Get("currency"); paramValue == "" {
		siw.ErrorHandlerFunc(w, r, &RequiredParamError{ParamName: "currency"})
		return
	}
	err = runtime.BindQueryParameter("form", true, true, "currency", r.URL.Query(), &params.Currency)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "currency", Err: err})
		return
	}

	err = runtime.BindQueryParameter("form", true, false, "tier", r.URL.Query(), &params.Tier)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "tier", Err: err})
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.QuoteFees(w, r, params)
	})
}

// ListTiers operation middleware
func (siw *ServerInterfaceWrapper) ListTiers(w http.ResponseWriter, r *http.Request) {
	var params ListTiersParams

	err := runtime.BindQueryParameter("form", true, false, "currency", r.URL.Query(), &params.Currency)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "currency", Err: err})
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListTiers(w, r, params)
	})
}

type RequiredParamError struct {
	ParamName string
}

func (e *RequiredParamError) Error() string {
	return fmt.Sprintf("Query argument %s is required, but not found", e.ParamName)
}

type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

// Handler creates http.Handler with routing matching OpenAPI spec.
func Handler(si ServerInterface) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{})
}

type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	Middlewares      []MiddlewareFunc
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// HandlerFromMux creates http.Handler with routing matching OpenAPI spec based on the provided mux.
func HandlerFromMux(si ServerInterface, r chi.Router) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{
		BaseRouter: r,
	})
}

func HandlerFromMuxWithBaseURL(si ServerInterface, r chi.Router, baseURL string) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{
		BaseURL:    baseURL,
		BaseRouter: r,
	})
}

// HandlerWithOptions creates http.Handler with additional options
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter

	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandlerFunc:   options.ErrorHandlerFunc,
	}

	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/escrows", wrapper.ListEscrows)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/escrows", wrapper.CreateEscrow)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/escrows/{escrowId}", wrapper.escrowOp(si.GetEscrow))
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/escrows/{escrowId}/accept", wrapper.escrowOp(si.AcceptEscrow))
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/escrows/{escrowId}/funding", wrapper.escrowOp(si.InitializeFunding))
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/escrows/{escrowId}/fund", wrapper.escrowOp(si.FundEscrow))
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/escrows/{escrowId}/delivery", wrapper.escrowOp(si.SubmitDelivery))
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/escrows/{escrowId}/confirm", wrapper.escrowOp(si.ConfirmDelivery))
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/escrows/{escrowId}/cancel", wrapper.escrowOp(si.CancelEscrow))
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/escrows/{escrowId}/payout", wrapper.escrowOp(si.RequestPayout))
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/escrows/{escrowId}/payout/confirm", wrapper.escrowOp(si.ConfirmPayout))
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/escrows/{escrowId}/disputes", wrapper.escrowOp(si.RaiseDispute))
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/disputes/{disputeId}", wrapper.disputeOp(si.GetDispute))
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/disputes/{disputeId}/assign", wrapper.disputeOp(si.AssignDispute))
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/disputes/{disputeId}/resolve", wrapper.disputeOp(si.ResolveDispute))
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/fees/quote", wrapper.QuoteFees)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/tiers", wrapper.ListTiers)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/me/verification", wrapper.GetVerificationStatus)
	})

	return r
}

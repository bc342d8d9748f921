package striperepo

type CreateSessionReq struct {
	AmountMinorUnits int64
	Currency         string
	Description      string
	SuccessURL       string
	CancelURL        string
	RentalID         int64
	UserID           int64
}

type CreateSessionResp struct {
	SessionID   string
	RedirectURL string
}

type Repo interface {
	CreateCheckoutSession(req CreateSessionReq) (*CreateSessionResp, error)
	VerifyWebhookSignature(sigHeader string, rawBody []byte) error
}

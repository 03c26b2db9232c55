package models

// Requests for the prediction HTTP endpoints. Defined in domain for
// consistency and reuse.

type PredictRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	Days   int    `query:"days" json:"days" default:"7" validate:"gte=1,lte=60"`
}

type SignalRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	Days   int    `query:"days" json:"days" default:"7" validate:"gte=1,lte=60"`
}

type TuneRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	N      int    `query:"n" json:"n" default:"1500" validate:"gte=200,lte=10000"`
}

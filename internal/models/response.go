package models

import "time"

type PhotoResponse struct {
	ID        string    `json:"id"`
	URI       string    `json:"uri"`
	Timestamp time.Time `json:"timestamp"`
	Angle     string    `json:"angle,omitempty"`
}

type PhotoListResponse struct {
	Photos []PhotoResponse `json:"photos"`
	Count  int             `json:"count"`
	Target int             `json:"target"`
}

type CaptureResponse struct {
	Accepted       bool    `json:"accepted"`
	PredictedClass string  `json:"predicted_class,omitempty"`
	EarConfidence  float64 `json:"ear_confidence,omitempty"`
	PhotoID        string  `json:"photo_id,omitempty"`
	Count          int     `json:"count"`
	Target         int     `json:"target"`
}

type AutoScanResponse struct {
	Captured int  `json:"captured"`
	Count    int  `json:"count"`
	Target   int  `json:"target"`
	Complete bool `json:"complete"`
}

type UploadResponse struct {
	UploadIDs []string `json:"upload_ids"`
	Progress  int      `json:"progress"`
}

type ReconstructionStatusResponse struct {
	JobID        string     `json:"job_id"`
	Status       string     `json:"status"`
	Progress     int        `json:"progress"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
}

type OrderResponse struct {
	ID                  string           `json:"order_id"`
	ReconstructionJobID string           `json:"reconstruction_job_id"`
	Variant             string           `json:"variant"`
	Quantity            int              `json:"quantity"`
	Price               string           `json:"price"`
	Status              string           `json:"status"`
	ShippingAddress     *ShippingAddress `json:"shipping_address,omitempty"`
	TrackingNumber      string           `json:"tracking_number,omitempty"`
	EstimatedDelivery   *time.Time       `json:"estimated_delivery,omitempty"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
}

type AdminStatsResponse struct {
	TotalUploads  int    `json:"total_uploads"`
	TotalOrders   int    `json:"total_orders"`
	PendingJobs   int    `json:"pending_jobs"`
	PendingOrders int    `json:"pending_orders"`
	Revenue       string `json:"revenue"`
}

type OTPSendResponse struct {
	Success bool `json:"success"`
}

type OTPVerifyResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

package models

type SavePhotoRequest struct {
	// Angle is optional; gallery imports usually omit it.
	Angle string `json:"angle,omitempty" example:"front"`
}

type CreateOrderRequest struct {
	ReconstructionJobID string `json:"reconstruction_job_id" binding:"required"`
	Variant             string `json:"variant" binding:"required" example:"standard"`
	Quantity            int    `json:"quantity" example:"1"`
}

type ConfirmOrderRequest struct {
	Name    string `json:"name" binding:"required"`
	Street  string `json:"street" binding:"required"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state" binding:"required"`
	ZipCode string `json:"zip_code" binding:"required"`
	Country string `json:"country" binding:"required"`
}

type SendOTPRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required" example:"+15550100"`
}

type VerifyOTPRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
	Code        string `json:"code" binding:"required" example:"123456"`
}

type ShipOrderRequest struct {
	TrackingNumber string `json:"tracking_number" binding:"required"`
}

type ReconstructionWebhookRequest struct {
	UploadID string `json:"upload_id" binding:"required"`
	Status   string `json:"status" binding:"required"`
	ModelURL string `json:"model_url,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

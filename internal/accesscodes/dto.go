package accesscodes

// ClaimRequest redeems one pool code for a customer.
type ClaimRequest struct {
	Email     string `json:"email" validate:"required,email"`
	ProductID string `json:"productId" validate:"required"`
	OrderID   string `json:"orderId,omitempty"`
}

// ClaimResponse carries the redeemed code and where to spend it.
type ClaimResponse struct {
	Code          string `json:"code"`
	GeneratorLink string `json:"generatorLink"`
}

// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeyInternalError = "error.internal"
	KeyRateLimited   = "error.rate_limited"
	KeyInvalidID     = "error.invalid_id"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthForbidden          = "auth.forbidden"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserNotFound       = "auth.user_not_found"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthEmailNotVerified   = "auth.email_not_verified"
	KeyAuthPasswordLoginOff   = "auth.password_login_unavailable"
	KeyAuthCredentialsMissing = "auth.credentials_required"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthLogoutSuccess      = "auth.logout_success"
	KeyAuthRegisterSuccess    = "auth.register_success"
	KeyAuthVerifySuccess      = "auth.verify_success"
	KeyAuthVerifyFailed       = "auth.verify_failed"

	// Users
	KeyUserProfileUpdated = "user.profile_updated"
	KeyUserAccountDeleted = "user.account_deleted"

	// Catalog
	KeyProductNotFound        = "product.not_found"
	KeyProductHasOrders       = "product.has_orders"
	KeyTypeNotFound           = "type.not_found"
	KeyTypeInUse              = "type.in_use"
	KeyTypeExists             = "type.exists"
	KeyCharacteristicNotFound = "characteristic.not_found"
	KeyCharacteristicExists   = "characteristic.exists"
	KeyMediaNotFound          = "media.not_found"
	KeyMediaKindInvalid       = "media.kind_invalid"
	KeyMediaProductRequired   = "media.product_required"
	KeyMediaConfirmInvalid    = "media.confirm_invalid"
	KeyMediaDeleteInvalid     = "media.delete_invalid"
	KeyMediaHostUnavailable   = "media.host_unavailable"

	// Cart
	KeyCartNoIdentity      = "cart.no_identity"
	KeyCartNotFound        = "cart.not_found"
	KeyCartItemNotFound    = "cart.item_not_found"
	KeyCartInsufficientQty = "cart.insufficient_stock"
	KeyCartQuantityInvalid = "cart.quantity_invalid"

	// Orders
	KeyOrderNotFound        = "order.not_found"
	KeyOrderEmpty           = "order.empty"
	KeyOrderProductNotFound = "order.product_not_found"
	KeyOrderQuantityInvalid = "order.quantity_invalid"
	KeyOrderNumberExhausted = "order.number_exhausted"
	KeyOrderAlreadyPaid     = "order.already_paid"
	KeyOrderNoPayment       = "order.no_payment"
	KeyPaymentUnavailable   = "payment.unavailable"

	// Validation
	KeyValidationInvalid = "validation.invalid"
)

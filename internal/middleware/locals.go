package middleware

// Keys used to store the authenticated principal on the fiber context.
const (
	LocalUserID   = "user_id"
	LocalUserRole = "user_role"
	LocalTenantID = "tenant_id"
	LocalViewRole = "view_role"
)

// HeaderUserType switches the role a caller views the API as.
const HeaderUserType = "X-User-Type"

package log

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Service
	FieldService = "service"

	// Chat session
	FieldSessionID = "session_id"
	FieldConnGen   = "conn_gen"
	FieldState     = "state"
	FieldEndpoint  = "endpoint"
	FieldDelay     = "delay_ms"
	FieldRole      = "role"

	// Uploads and search
	FieldFile     = "file"
	FieldRows     = "rows"
	FieldZipCode  = "zip_code"
	FieldRadiusKM = "radius_km"
	FieldMSDRG    = "ms_drg"
)

package log

// Field names shared across components so the same concept always logs
// under the same key.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"

	FieldOwnerID     = "owner_id"
	FieldAccountID   = "account_id"
	FieldPaymentID   = "payment_id"
	FieldDebtID      = "debt_id"
	FieldLoanID      = "loan_id"
	FieldGoalID      = "goal_id"
	FieldEntryID     = "entry_id"
	FieldEntryType   = "entry_type"
	FieldAmountCents = "amount_cents"
	FieldDueDate     = "due_date"
	FieldStatus      = "status"
)

// Component names.
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentStorage   = "storage"
	ComponentLedger    = "ledger"
	ComponentSchedule  = "schedule"
	ComponentDashboard = "dashboard"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
)

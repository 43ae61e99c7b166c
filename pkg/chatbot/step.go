package chatbot

// Step is one node in the fixed dispute-registration dialogue.
type Step string

// Dialogue steps, in flow order.
const (
	StepStart           Step = "start"
	StepDigitalChannel  Step = "digitalChannel"
	StepComplaintType   Step = "complaintType"
	StepTransactionID   Step = "transactionId"
	StepDescription     Step = "description"
	StepDebitCardNumber Step = "debitCardNumber"
	StepAmount          Step = "amount"
	StepVendorChoice    Step = "vendorChoice"
	StepVendorName      Step = "vendorName"
)

// Prompts sent to the user as each step begins.
const (
	promptWelcome        = "Welcome to the Dispute Registration Assistant. Would you like to register a new dispute? (yes/no)"
	promptDigitalChannel = "What digital channel was used for this transaction? (e.g. Mobile Banking, Internet Banking, ATM)"
	promptComplaintType  = "What type of complaint is this? (e.g. Failed Transaction, Unauthorized Transaction, Double Charge)"
	promptTransactionID  = "Please provide the transaction ID (10-digit number):"
	promptDescription    = "Please describe the issue in detail:"
	promptDebitCard      = "Please provide your debit card number (16 digits):"
	promptAmount         = "What was the transaction amount? (numbers only, e.g. 123.45)"
	promptVendorChoice   = "Do you want to report a specific vendor? (yes/no)"
	promptVendorName     = "Please provide the vendor name:"
	promptGoodbye        = "Thank you for using the Dispute Registration Assistant. Feel free to come back if you need to register a dispute."
	promptSubmitted      = "Thank you! Your dispute has been registered successfully."
	promptUserNotFound   = "User not found. Please log in again."
)

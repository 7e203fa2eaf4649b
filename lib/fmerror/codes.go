package fmerror

// Subset of the error codes published in the FileMaker Server Custom Web
// Publishing guide. Codes missing from this table still round-trip through
// Error, they just render without a description.
var codes = map[int]string{
	-1:  "Unknown error",
	0:   "No error",
	1:   "User canceled action",
	2:   "Memory error",
	3:   "Command is unavailable",
	4:   "Command is unknown",
	5:   "Command is invalid",
	6:   "File is read-only",
	7:   "Running out of memory",
	8:   "Empty result",
	9:   "Insufficient privileges",
	10:  "Requested data is missing",
	11:  "Name is not valid",
	12:  "Name already exists",
	13:  "File or object is in use",
	14:  "Out of range",
	15:  "Can't divide by zero",
	16:  "Operation failed; request retry",
	17:  "Attempt to convert foreign character set to UTF-16 failed",
	18:  "Client must provide account information to proceed",
	19:  "String contains characters other than A-Z, a-z, 0-9",
	100: "File is missing",
	101: "Record is missing",
	102: "Field is missing",
	103: "Relationship is missing",
	104: "Script is missing",
	105: "Layout is missing",
	106: "Table is missing",
	107: "Index is missing",
	108: "Value list is missing",
	109: "Privilege set is missing",
	110: "Related tables are missing",
	111: "Field repetition is invalid",
	112: "Window is missing",
	113: "Function is missing",
	200: "Record access is denied",
	201: "Field cannot be modified",
	202: "Field access is denied",
	203: "No records in file to print, or password doesn't allow print access",
	207: "User does not have sufficient privileges to change database schema, or file is not modifiable",
	208: "Password does not contain enough characters",
	209: "New password must be different from existing one",
	210: "User account is inactive",
	211: "Password has expired",
	212: "Invalid user account and/or password; please try again",
	300: "File is locked or in use",
	301: "Record is in use by another user",
	302: "Table is in use by another user",
	303: "Database schema is in use by another user",
	306: "Record modification ID does not match",
	400: "Find criteria are empty",
	401: "No records match the request",
	402: "Selected field is not a match field for a lookup",
	403: "Exceeding maximum record limit for trial version",
	404: "Sort order is invalid",
	405: "Number of records specified exceeds number of records that can be omitted",
	406: "Replace/reserialize criteria are invalid",
	407: "One or both match fields are missing (invalid relationship)",
	408: "Specified field has inappropriate data type for this operation",
	409: "Import order is invalid",
	410: "Export order is invalid",
	412: "Wrong version of FileMaker Pro used to recover file",
	413: "Specified field has inappropriate field type",
	414: "Layout cannot display the result",
	500: "Date value does not meet validation entry options",
	501: "Time value does not meet validation entry options",
	502: "Number value does not meet validation entry options",
	503: "Value in field is not within the range specified in validation entry options",
	504: "Value in field is not unique as required in validation entry options",
	505: "Value in field is not an existing value in the database file as required in validation entry options",
	506: "Value in field is not listed on the value list specified in validation entry option",
	507: "Value in field failed calculation test of validation entry option",
	508: "Invalid value entered in Find mode",
	509: "Field requires a valid value",
	510: "Related value is empty or unavailable",
	511: "Value in field exceeds maximum number of allowed characters",
	800: "Unable to create file on disk",
	802: "Unable to open file",
	805: "File is damaged; use Recover command",
	806: "File cannot be opened with this version of FileMaker Pro",
	807: "File is not a FileMaker Pro file or is severely damaged",
	810: "Disk/volume is full",
	811: "Disk/volume is locked",
	813: "Record Synchronization error on network",
	952: "Invalid FileMaker Data API token",
	954: "Unsupported XML grammar",
	955: "No database name",
	956: "Maximum number of database sessions exceeded",
	957: "Conflicting commands",
	958: "Parameter missing in query",
	959: "Custom Web Publishing technology is disabled",
	960: "Parameter is invalid",
}

package at

const (
	// Terminal Control
	CRLF   = "\r\n"
	Prompt = "> "

	// Response Codes
	OK         = "OK"
	ERROR      = "ERROR"
	NoCarrier  = "NO CARRIER"
	NoDialtone = "NO DIALTONE"
	Busy       = "BUSY"
	NoAnswer   = "NO ANSWER"
	CmeError   = "+CME ERROR:"
	CmsError   = "+CMS ERROR:"

	// URCs (Unsolicited Result Codes)
	UrcNewMsg         = "+CMTI:"
	UrcCall           = "RING"
	UrcSocketData     = "+UUSORD:"
	UrcSocketDataFrom = "+UUSORF:"
	UrcSocketClosed   = "+UUSOCL:"
	UrcPacketDataLost = "+UUPSDD:"
)

// Basic commands
const (
	CmdAt            = "AT"
	CmdEchoOff       = "ATE0"
	CmdVerboseErrors = "AT+CMEE=2"
	CmdSimStatus     = "AT+CPIN?"
	CmdManufacturer  = "AT+CGMI"
	CmdModel         = "AT+CGMM"
	CmdRevision      = "AT+CGMR"
	CmdIMEI          = "AT+CGSN"
	CmdIMSI          = "AT+CIMI"
	CmdCCID          = "AT+CCID"
	CmdNetReg        = "AT+CREG?"
	CmdGprsReg       = "AT+CGREG?"
	CmdSignal        = "AT+CSQ"
	CmdOperator      = "AT+COPS?"

	// u-blox: socket payloads as hex strings
	CmdHexSocketData = "AT+UDCONF=1,1"
)

// SIM states reported by AT+CPIN?
const (
	SimReady = "READY"
	SimPin   = "SIM PIN"
	SimPuk   = "SIM PUK"
)

type ResponseType int

const (
	TypeFinal  ResponseType = iota // OK, ERROR
	TypeURC                        // Asynchronous notifications
	TypeData                       // Intermediate command output (+CSQ: ...)
	TypePrompt                     // data input prompt
)

func (t ResponseType) String() string {
	switch t {
	case TypeFinal:
		return "final"
	case TypeURC:
		return "urc"
	case TypeData:
		return "data"
	case TypePrompt:
		return "prompt"
	default:
		return "unknown"
	}
}

// Package dvbt holds the data model shared by every stage of the DVB-T EPG
// pipeline: tuned channels, scan-file entries, and the records the PSI/SI
// parsers produce. Types here carry no behavior beyond their invariants —
// parsing, tuning, and aggregation live in the packages that build them.
package dvbt

// Channel is a tuned service: display name, tuning parameters in zap
// vocabulary, and the PIDs/service_id discovered (or supplied) for it.
// Immutable once constructed by ChannelFile or ScanOrchestrator.
type Channel struct {
	Name             string
	Frequency        uint64 // Hz
	Inversion        string
	Bandwidth        string
	FECHP            string
	FECLP            string
	Modulation       string
	TransmissionMode string
	GuardInterval    string
	Hierarchy        string
	VideoPID         uint16
	AudioPID         uint16
	ServiceID        uint16
}

// ScanEntry is a dvbv5-vocabulary tuning record read from a scan file. It
// projects 1:1 onto a Channel with a blank name, zero PIDs and service_id.
type ScanEntry struct {
	DeliverySystem   string
	Frequency        uint64 // Hz
	BandwidthHz      uint64
	CodeRateHP       string
	CodeRateLP       string
	Modulation       string
	TransmissionMode string
	GuardInterval    string
	Hierarchy        string
	Inversion        string
}

// PatEntry is one non-NIT row of the Program Association Table.
type PatEntry struct {
	ServiceID uint16 // MPEG program_number, nonzero
	PMTPID    uint16 // 13 bits
}

// PmtInfo is the subset of a Program Map Table this grabber cares about:
// the first video and audio elementary stream PIDs. Zero means none found.
type PmtInfo struct {
	VideoPID uint16
	AudioPID uint16
}

// EitEvent is one accepted Event Information Table event.
type EitEvent struct {
	ServiceID     uint16
	EventID       uint16
	StartTime     int64 // Unix seconds, >= 0
	Duration      int64 // seconds, 0 <= Duration <= 86400
	RunningStatus uint8 // 3 bits
	EventName     string
	Description   string
	Language      string // 3 bytes, e.g. "eng"
}

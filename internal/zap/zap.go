// Package zap translates DVB tuning parameters between two vocabularies:
// the dvbv5-scan vocabulary used by scan files (numeric Hz, "2/3"-style
// fraction strings) and the zap vocabulary used by channels.conf and the
// Channel type ("BANDWIDTH_6_MHZ", "FEC_2_3", ...). It also encodes zap
// strings to the numeric values the frontend ioctl property set expects,
// using the enum values linux/dvb/frontend.h defines for each property.
package zap

import (
	"fmt"
	"strings"
)

// ErrUnknownValue is returned by the Encode* direction when a zap string is
// not in the fixed vocabulary. The ToZap* direction never fails; it falls
// back to the family's _AUTO (or _NONE) member instead.
type ErrUnknownValue struct {
	Field string
	Value string
}

func (e *ErrUnknownValue) Error() string {
	return fmt.Sprintf("zap: unknown %s value %q", e.Field, e.Value)
}

// --- dvbv5 scan-file value -> zap vocabulary -------------------------------
//
// These are total: a value with no mapping falls back to the _AUTO member of
// its family (_NONE for hierarchy), so a scan file with a missing or exotic
// key still yields a tunable Channel.

// ToZapInversion converts a dvbv5 INVERSION value (AUTO/ON/OFF) to its zap
// string.
func ToZapInversion(v string) string {
	switch strings.ToUpper(v) {
	case "ON":
		return "INVERSION_ON"
	case "OFF":
		return "INVERSION_OFF"
	}
	return "INVERSION_AUTO"
}

// ToZapBandwidth converts a dvbv5 BANDWIDTH_HZ value to its zap string.
func ToZapBandwidth(hz uint64) string {
	switch hz {
	case 1712000:
		return "BANDWIDTH_1_712_MHZ"
	case 5000000:
		return "BANDWIDTH_5_MHZ"
	case 6000000:
		return "BANDWIDTH_6_MHZ"
	case 7000000:
		return "BANDWIDTH_7_MHZ"
	case 8000000:
		return "BANDWIDTH_8_MHZ"
	case 10000000:
		return "BANDWIDTH_10_MHZ"
	}
	return "BANDWIDTH_AUTO"
}

// ToZapFEC converts a dvbv5 CODE_RATE fraction string ("2/3", "NONE") to its
// zap FEC_* string.
func ToZapFEC(v string) string {
	switch strings.ToUpper(v) {
	case "NONE":
		return "FEC_NONE"
	case "1/2":
		return "FEC_1_2"
	case "2/3":
		return "FEC_2_3"
	case "3/4":
		return "FEC_3_4"
	case "4/5":
		return "FEC_4_5"
	case "5/6":
		return "FEC_5_6"
	case "6/7":
		return "FEC_6_7"
	case "7/8":
		return "FEC_7_8"
	case "8/9":
		return "FEC_8_9"
	}
	return "FEC_AUTO"
}

// ToZapModulation converts a dvbv5 MODULATION string ("QAM/64", "QPSK", ...)
// to its zap string ("QAM_64", "QPSK", ...).
func ToZapModulation(v string) string {
	switch strings.ToUpper(v) {
	case "QPSK":
		return "QPSK"
	case "QAM/16":
		return "QAM_16"
	case "QAM/32":
		return "QAM_32"
	case "QAM/64":
		return "QAM_64"
	case "QAM/128":
		return "QAM_128"
	case "QAM/256":
		return "QAM_256"
	case "VSB/8":
		return "VSB_8"
	case "VSB/16":
		return "VSB_16"
	case "PSK/8":
		return "PSK_8"
	}
	return "QAM_AUTO"
}

// ToZapTransmissionMode converts a dvbv5 TRANSMISSION_MODE string ("8K",
// "2K", ...) to its zap string.
func ToZapTransmissionMode(v string) string {
	switch strings.ToUpper(v) {
	case "2K":
		return "TRANSMISSION_MODE_2K"
	case "8K":
		return "TRANSMISSION_MODE_8K"
	case "4K":
		return "TRANSMISSION_MODE_4K"
	case "1K":
		return "TRANSMISSION_MODE_1K"
	case "16K":
		return "TRANSMISSION_MODE_16K"
	case "32K":
		return "TRANSMISSION_MODE_32K"
	}
	return "TRANSMISSION_MODE_AUTO"
}

// ToZapGuardInterval converts a dvbv5 GUARD_INTERVAL string ("1/8", ...) to
// its zap string.
func ToZapGuardInterval(v string) string {
	switch strings.ToUpper(v) {
	case "1/32":
		return "GUARD_INTERVAL_1_32"
	case "1/16":
		return "GUARD_INTERVAL_1_16"
	case "1/8":
		return "GUARD_INTERVAL_1_8"
	case "1/4":
		return "GUARD_INTERVAL_1_4"
	case "1/128":
		return "GUARD_INTERVAL_1_128"
	case "19/128":
		return "GUARD_INTERVAL_19_128"
	case "19/256":
		return "GUARD_INTERVAL_19_256"
	}
	return "GUARD_INTERVAL_AUTO"
}

// ToZapHierarchy converts a dvbv5 HIERARCHY string ("NONE", "1", ...) to
// its zap string. Unknown values map to HIERARCHY_NONE, not _AUTO: an absent
// hierarchy key nearly always means the multiplex isn't hierarchical at all.
func ToZapHierarchy(v string) string {
	switch strings.ToUpper(v) {
	case "1":
		return "HIERARCHY_1"
	case "2":
		return "HIERARCHY_2"
	case "4":
		return "HIERARCHY_4"
	case "AUTO":
		return "HIERARCHY_AUTO"
	}
	return "HIERARCHY_NONE"
}

// --- zap vocabulary -> dvbv5 scan-file value -------------------------------
//
// The reverse projection, for emitting dvbv5-format output from Channel
// records. Total like the forward direction: an unknown zap string falls
// back to the family's AUTO spelling (NONE for hierarchy).

// FromZapInversion converts a zap INVERSION_* string back to its dvbv5
// value.
func FromZapInversion(v string) string {
	switch v {
	case "INVERSION_ON":
		return "ON"
	case "INVERSION_OFF":
		return "OFF"
	}
	return "AUTO"
}

// FromZapBandwidth converts a zap BANDWIDTH_* string back to its dvbv5 Hz
// count. BANDWIDTH_AUTO and unknown spellings yield 0, meaning "key absent"
// on emit.
func FromZapBandwidth(v string) uint64 {
	switch v {
	case "BANDWIDTH_1_712_MHZ":
		return 1712000
	case "BANDWIDTH_5_MHZ":
		return 5000000
	case "BANDWIDTH_6_MHZ":
		return 6000000
	case "BANDWIDTH_7_MHZ":
		return 7000000
	case "BANDWIDTH_8_MHZ":
		return 8000000
	case "BANDWIDTH_10_MHZ":
		return 10000000
	}
	return 0
}

// FromZapFEC converts a zap FEC_* string back to its dvbv5 fraction
// spelling.
func FromZapFEC(v string) string {
	switch v {
	case "FEC_NONE":
		return "NONE"
	case "FEC_1_2":
		return "1/2"
	case "FEC_2_3":
		return "2/3"
	case "FEC_3_4":
		return "3/4"
	case "FEC_4_5":
		return "4/5"
	case "FEC_5_6":
		return "5/6"
	case "FEC_6_7":
		return "6/7"
	case "FEC_7_8":
		return "7/8"
	case "FEC_8_9":
		return "8/9"
	}
	return "AUTO"
}

// FromZapModulation converts a zap modulation string back to its dvbv5
// spelling.
func FromZapModulation(v string) string {
	switch v {
	case "QPSK":
		return "QPSK"
	case "QAM_16":
		return "QAM/16"
	case "QAM_32":
		return "QAM/32"
	case "QAM_64":
		return "QAM/64"
	case "QAM_128":
		return "QAM/128"
	case "QAM_256":
		return "QAM/256"
	case "VSB_8":
		return "VSB/8"
	case "VSB_16":
		return "VSB/16"
	case "PSK_8":
		return "PSK/8"
	}
	return "QAM/AUTO"
}

// FromZapTransmissionMode converts a zap TRANSMISSION_MODE_* string back to
// its dvbv5 spelling.
func FromZapTransmissionMode(v string) string {
	switch v {
	case "TRANSMISSION_MODE_1K":
		return "1K"
	case "TRANSMISSION_MODE_2K":
		return "2K"
	case "TRANSMISSION_MODE_4K":
		return "4K"
	case "TRANSMISSION_MODE_8K":
		return "8K"
	case "TRANSMISSION_MODE_16K":
		return "16K"
	case "TRANSMISSION_MODE_32K":
		return "32K"
	}
	return "AUTO"
}

// FromZapGuardInterval converts a zap GUARD_INTERVAL_* string back to its
// dvbv5 fraction spelling.
func FromZapGuardInterval(v string) string {
	switch v {
	case "GUARD_INTERVAL_1_32":
		return "1/32"
	case "GUARD_INTERVAL_1_16":
		return "1/16"
	case "GUARD_INTERVAL_1_8":
		return "1/8"
	case "GUARD_INTERVAL_1_4":
		return "1/4"
	case "GUARD_INTERVAL_1_128":
		return "1/128"
	case "GUARD_INTERVAL_19_128":
		return "19/128"
	case "GUARD_INTERVAL_19_256":
		return "19/256"
	}
	return "AUTO"
}

// FromZapHierarchy converts a zap HIERARCHY_* string back to its dvbv5
// spelling.
func FromZapHierarchy(v string) string {
	switch v {
	case "HIERARCHY_1":
		return "1"
	case "HIERARCHY_2":
		return "2"
	case "HIERARCHY_4":
		return "4"
	case "HIERARCHY_AUTO":
		return "AUTO"
	}
	return "NONE"
}

// --- zap vocabulary -> frontend property value -----------------------------
//
// Values are the linux/dvb/frontend.h enum members the corresponding
// property expects; DTV_BANDWIDTH_HZ is the one exception that takes an
// actual Hz count rather than an enum index.

// EncodeInversion converts a zap INVERSION_* string to its fe_spectral_inversion value.
func EncodeInversion(v string) (uint32, error) {
	switch v {
	case "INVERSION_OFF":
		return 0, nil
	case "INVERSION_ON":
		return 1, nil
	case "INVERSION_AUTO":
		return 2, nil
	}
	return 0, &ErrUnknownValue{"INVERSION", v}
}

// EncodeBandwidth converts a zap BANDWIDTH_* string to its Hz value.
func EncodeBandwidth(v string) (uint32, error) {
	switch v {
	case "BANDWIDTH_1_712_MHZ":
		return 1712000, nil
	case "BANDWIDTH_5_MHZ":
		return 5000000, nil
	case "BANDWIDTH_6_MHZ":
		return 6000000, nil
	case "BANDWIDTH_7_MHZ":
		return 7000000, nil
	case "BANDWIDTH_8_MHZ":
		return 8000000, nil
	case "BANDWIDTH_10_MHZ":
		return 10000000, nil
	case "BANDWIDTH_AUTO":
		return 8000000, nil
	}
	return 0, &ErrUnknownValue{"BANDWIDTH", v}
}

// EncodeFEC converts a zap FEC_* string to its fe_code_rate value.
func EncodeFEC(v string) (uint32, error) {
	switch v {
	case "FEC_NONE":
		return 0, nil
	case "FEC_1_2":
		return 1, nil
	case "FEC_2_3":
		return 2, nil
	case "FEC_3_4":
		return 3, nil
	case "FEC_4_5":
		return 4, nil
	case "FEC_5_6":
		return 5, nil
	case "FEC_6_7":
		return 6, nil
	case "FEC_7_8":
		return 7, nil
	case "FEC_8_9":
		return 8, nil
	case "FEC_AUTO":
		return 9, nil
	}
	return 0, &ErrUnknownValue{"CODE_RATE", v}
}

// EncodeModulation converts a zap modulation string to its fe_modulation value.
func EncodeModulation(v string) (uint32, error) {
	switch v {
	case "QPSK":
		return 0, nil
	case "QAM_16":
		return 1, nil
	case "QAM_32":
		return 2, nil
	case "QAM_64":
		return 3, nil
	case "QAM_128":
		return 4, nil
	case "QAM_256":
		return 5, nil
	case "QAM_AUTO":
		return 6, nil
	case "VSB_8":
		return 7, nil
	case "VSB_16":
		return 8, nil
	case "PSK_8":
		return 9, nil
	}
	return 0, &ErrUnknownValue{"MODULATION", v}
}

// EncodeTransmissionMode converts a zap TRANSMISSION_MODE_* string to its
// fe_transmit_mode value.
func EncodeTransmissionMode(v string) (uint32, error) {
	switch v {
	case "TRANSMISSION_MODE_2K":
		return 0, nil
	case "TRANSMISSION_MODE_8K":
		return 1, nil
	case "TRANSMISSION_MODE_AUTO":
		return 2, nil
	case "TRANSMISSION_MODE_4K":
		return 3, nil
	case "TRANSMISSION_MODE_1K":
		return 4, nil
	case "TRANSMISSION_MODE_16K":
		return 5, nil
	case "TRANSMISSION_MODE_32K":
		return 6, nil
	}
	return 0, &ErrUnknownValue{"TRANSMISSION_MODE", v}
}

// EncodeGuardInterval converts a zap GUARD_INTERVAL_* string to its
// fe_guard_interval value.
func EncodeGuardInterval(v string) (uint32, error) {
	switch v {
	case "GUARD_INTERVAL_1_32":
		return 0, nil
	case "GUARD_INTERVAL_1_16":
		return 1, nil
	case "GUARD_INTERVAL_1_8":
		return 2, nil
	case "GUARD_INTERVAL_1_4":
		return 3, nil
	case "GUARD_INTERVAL_AUTO":
		return 4, nil
	case "GUARD_INTERVAL_1_128":
		return 5, nil
	case "GUARD_INTERVAL_19_128":
		return 6, nil
	case "GUARD_INTERVAL_19_256":
		return 7, nil
	}
	return 0, &ErrUnknownValue{"GUARD_INTERVAL", v}
}

// EncodeHierarchy converts a zap HIERARCHY_* string to its fe_hierarchy value.
func EncodeHierarchy(v string) (uint32, error) {
	switch v {
	case "HIERARCHY_NONE":
		return 0, nil
	case "HIERARCHY_1":
		return 1, nil
	case "HIERARCHY_2":
		return 2, nil
	case "HIERARCHY_4":
		return 3, nil
	case "HIERARCHY_AUTO":
		return 4, nil
	}
	return 0, &ErrUnknownValue{"HIERARCHY", v}
}

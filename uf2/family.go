package uf2

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Family is a named target chip family.
type Family struct {
	// Name is the registry key used on the command line
	Name string

	// Description is a human-readable chip name
	Description string

	// ID is the 32-bit family identifier written into block headers
	ID uint32
}

// FamilyNone is the "no family ID" sentinel.
const FamilyNone uint32 = 0

var families = []Family{
	{Name: "none", Description: "Generic / no family ID", ID: FamilyNone},
	{Name: "rp2040", Description: "Raspberry Pi RP2040 (Pico)", ID: 0xE48BFF56},
	{Name: "rp2350-arm-s", Description: "Raspberry Pi RP2350, ARM secure", ID: 0xE48BFF59},
	{Name: "rp2350-riscv", Description: "Raspberry Pi RP2350, RISC-V", ID: 0xE48BFF5A},
	{Name: "rp2350-arm-ns", Description: "Raspberry Pi RP2350, ARM non-secure", ID: 0xE48BFF5B},
	{Name: "esp32", Description: "Espressif ESP32", ID: 0x1C5F21B0},
	{Name: "esp32s2", Description: "Espressif ESP32-S2", ID: 0xBFDD4EEE},
	{Name: "esp32s3", Description: "Espressif ESP32-S3", ID: 0xC47E5767},
	{Name: "esp32c3", Description: "Espressif ESP32-C3", ID: 0xD42BA06C},
	{Name: "stm32f1", Description: "ST STM32F1xx", ID: 0x5EE21072},
	{Name: "stm32f4", Description: "ST STM32F4xx", ID: 0x57755A57},
	{Name: "stm32f7", Description: "ST STM32F7xx", ID: 0x53B80F00},
	{Name: "stm32h7", Description: "ST STM32H7xx", ID: 0x6DB66082},
	{Name: "stm32l4", Description: "ST STM32L4xx", ID: 0x00FF6919},
	{Name: "samd21", Description: "Microchip ATSAMD21", ID: 0x68ED2B88},
	{Name: "samd51", Description: "Microchip ATSAMD51", ID: 0x55114460},
	{Name: "nrf52", Description: "Nordic nRF52", ID: 0x1B57745F},
	{Name: "nrf52840", Description: "Nordic nRF52840", ID: 0xADA52840},
}

// Families returns the known families sorted by name.
func Families() []Family {
	out := slices.Clone(families)
	slices.SortFunc(out, func(a, b Family) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// LookupFamily finds a family by name. Matching ignores case, '-' and '_',
// so "ESP32-S3", "esp32_s3" and "esp32s3" are the same family.
func LookupFamily(name string) (Family, bool) {
	key := normalizeFamilyName(name)
	for _, f := range families {
		if normalizeFamilyName(f.Name) == key {
			return f, true
		}
	}
	return Family{}, false
}

// FamilyName returns the registry name for id, or "" if it is not registered.
func FamilyName(id uint32) string {
	for _, f := range families {
		if f.ID == id {
			return f.Name
		}
	}
	return ""
}

// ParseFamilyID resolves a family given as a registry name or a hexadecimal
// literal with or without a 0x prefix. An empty string means FamilyNone.
//
// Example:
//
//	id, err := uf2.ParseFamilyID("rp2040")     // 0xE48BFF56
//	id, err = uf2.ParseFamilyID("0xe48bff56")  // 0xE48BFF56
//	id, err = uf2.ParseFamilyID("ada52840")    // 0xADA52840
func ParseFamilyID(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return FamilyNone, nil
	}
	if f, ok := LookupFamily(s); ok {
		return f.ID, nil
	}

	lit := s
	if len(lit) > 2 && (lit[:2] == "0x" || lit[:2] == "0X") {
		lit = lit[2:]
	}
	v, err := strconv.ParseUint(lit, 16, 32)
	if err != nil {
		return 0, &InvalidInputError{
			Reason: fmt.Sprintf("family ID %q is neither a known family nor a 32-bit hex literal", s),
			Err:    err,
		}
	}
	return uint32(v), nil
}

func normalizeFamilyName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)
}

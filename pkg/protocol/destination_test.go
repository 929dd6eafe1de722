package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveDestination(t *testing.T) {
	dest := DeriveDestination("M-AB 123", "01.03.2025", "09:15")

	assert.Equal(t, "M-AB_123", dest.PlateFolder)
	assert.Equal(t, "01-03-2025_09-15", dest.SessionFolder)
}

func TestDeriveDestinationUppercasesPlate(t *testing.T) {
	dest := DeriveDestination("m-ab 123", "01.03.2025", "09:15")

	assert.Equal(t, "M-AB_123", dest.PlateFolder)
}

func TestDeriveDestinationSanitizesPlate(t *testing.T) {
	dest := DeriveDestination("m/ab?123", "02.04.2025", "18:05")

	assert.Equal(t, "M_AB_123", dest.PlateFolder)
	assert.Equal(t, "02-04-2025_18-05", dest.SessionFolder)
}

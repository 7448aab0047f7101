package dicom

import (
	"math/big"

	"github.com/google/uuid"
)

// NewUID returns a UID under the 2.25 root, the decimal form of a random UUID
func NewUID() string {
	u := uuid.New()
	return "2.25." + new(big.Int).SetBytes(u[:]).String()
}

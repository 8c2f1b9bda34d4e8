package utils

import (
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	idTimeLayout      = "20060102150405"
	idEntropyAlphabet = "0123456789abcdef"
	idEntropyLength   = 8 // 4 bytes, hex encoded
)

// GenerateID returns a UTC microsecond timestamp followed by 8 random hex characters,
// so ids sort in creation order.
func GenerateID() string {
	now := Now()
	return fmt.Sprintf("%s%06d%s",
		now.Format(idTimeLayout),
		now.Nanosecond()/int(time.Microsecond),
		gonanoid.MustGenerate(idEntropyAlphabet, idEntropyLength),
	)
}

func GenerateNanoIDWithPrefix(prefix string, size int) string {
	id, err := gonanoid.New(size)
	if err != nil {
		panic(err)
	}
	return fmt.Sprintf("%s_%s", prefix, id)
}

func Now() time.Time {
	return time.Now().UTC()
}

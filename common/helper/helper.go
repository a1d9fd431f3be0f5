package helper

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
)

func GetTimestamp() int64 {
	return time.Now().Unix()
}

func GetTimeString() string {
	now := time.Now()
	return fmt.Sprintf("%s%d", now.Format("20060102150405"), now.UnixNano()%1e9)
}

// GenRequestID returns an id that sorts by creation time.
func GenRequestID() string {
	return GetTimeString() + GetRandomNumberString(8)
}

func GetRandomNumberString(length int) string {
	key := make([]byte, length)
	for i := 0; i < length; i++ {
		key[i] = byte(rand.Intn(10) + '0')
	}
	return string(key)
}

func GetUUID() string {
	return strings.Replace(uuid.New().String(), "-", "", -1)
}

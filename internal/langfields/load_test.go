package langfields

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type uuidKey [2]string

func (k uuidKey) String() string { return k[0] + "-" + k[1] }

func TestKeyStringMatchesTextCast(t *testing.T) {
	assert.Equal(t, "42", keyString(int64(42)))
	assert.Equal(t, keyString(uint(42)), keyString(textOf("42")))
	assert.Equal(t, "9f1c2b3a-4d5e-4f60-8172-93a4b5c6d7e8",
		keyString("9F1C2B3A-4D5E-4F60-8172-93A4B5C6D7E8"))
	assert.Equal(t, "ab-cd", keyString(uuidKey{"AB", "cd"}))
	assert.Equal(t, keyString("abc"), keyString(textOf([]byte("abc"))))
}

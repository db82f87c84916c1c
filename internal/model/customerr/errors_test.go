package customerr

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func Test_NotFound_ShouldKeepSideSentinel(t *testing.T) {
	err := errors.Wrap(NotFound("XYZ", ErrToCurrencyNotFound), "convert")

	assert.True(t, IsNotFound(err))
	assert.True(t, errors.Is(err, ErrToCurrencyNotFound))
	assert.False(t, errors.Is(err, ErrFromCurrencyNotFound))
	assert.Equal(t, "convert: 'to' currency not found: XYZ", err.Error())
}

func Test_NotFound_WithoutCode(t *testing.T) {
	err := NotFound("", ErrNoRates)

	assert.Equal(t, "no exchange rate data available", err.Error())
	assert.True(t, errors.Is(err, ErrNoRates))
}

func Test_Classifiers_ShouldNotOverlap(t *testing.T) {
	cause := errors.New("boom")

	up := Upstream(cause)
	assert.True(t, IsUpstream(up))
	assert.False(t, IsPersistence(up))
	assert.True(t, errors.Is(up, cause))

	pers := Persistence(cause)
	assert.True(t, IsPersistence(pers))
	assert.False(t, IsValidation(pers))

	val := Validation("amount", "must be a number")
	assert.True(t, IsValidation(val))
	assert.Equal(t, "amount: must be a number", val.Error())
}

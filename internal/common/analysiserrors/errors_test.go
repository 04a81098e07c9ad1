package analysiserrors

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrMalformedRecord_Error(t *testing.T) {
	tests := map[string]struct {
		err  *ErrMalformedRecord
		want string
	}{
		"line only": {
			err:  &ErrMalformedRecord{Line: 3},
			want: "malformed record on line 3",
		},
		"field and value": {
			err:  &ErrMalformedRecord{Line: 7, Field: "jobid", Value: "abc"},
			want: `malformed record on line 7: value "abc" is invalid for column "jobid"`,
		},
		"with message": {
			err:  &ErrMalformedRecord{Line: 2, Field: "read_bytes", Value: "1:x", Message: "not an integer"},
			want: `malformed record on line 2: value "1:x" is invalid for column "read_bytes"; not an integer`,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.err.Error())
		})
	}
}

func TestErrInvalidArgument_Error(t *testing.T) {
	assert.Equal(t, `value 0 is invalid for argument "batchSize"`, (&ErrInvalidArgument{Name: "batchSize", Value: 0}).Error())
	assert.Equal(
		t,
		`value -1 is invalid for argument "numWorkers"; must be at least 1`,
		(&ErrInvalidArgument{Name: "numWorkers", Value: -1, Message: "must be at least 1"}).Error(),
	)
}

func TestErrorsAs_ThroughMessages(t *testing.T) {
	err := errors.WithMessage(&ErrMalformedRecord{Line: 4}, "loading dataset")
	var malformed *ErrMalformedRecord
	assert.True(t, errors.As(err, &malformed))
	assert.Equal(t, 4, malformed.Line)

	var invalid *ErrInvalidArgument
	assert.False(t, errors.As(err, &invalid))
}

package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	VariableCatalog
	calls int
	err   error
}

func (s *countingStore) GetMariaDBVariable(ctx context.Context, name VariableName) (*MariaDBVariable, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.VariableCatalog.GetMariaDBVariable(ctx, name)
}

func testCatalog() VariableCatalog {
	return NewVariableCatalog(
		MariaDBVariable{Name: "innodb_buffer_pool_size", Datatype: DatatypeInt, Dynamic: true},
		MariaDBVariable{Name: "log_bin", Datatype: "Bool", Dynamic: false},
		MariaDBVariable{Name: "character_set_server", Datatype: DatatypeStr, Dynamic: true},
	)
}

func TestVariableOverride_ValueFields(t *testing.T) {
	o := &VariableOverride{}
	assert.Equal(t, []string{"value_int", "value_bool", "value_str"}, o.ValueFields())

	fields := o.ValueFields()
	fields[0] = "modified"
	assert.Equal(t, ValueFieldInt, o.ValueFields()[0])
}

func TestVariableOverride_ValueField(t *testing.T) {
	o := &VariableOverride{}
	assert.Equal(t, "", o.ValueField())

	o.ValueStr = "utf8mb4"
	assert.Equal(t, ValueFieldStr, o.ValueField())

	o.ValueBool = true
	assert.Equal(t, ValueFieldBool, o.ValueField())

	o.ValueInt = 5
	assert.Equal(t, ValueFieldInt, o.ValueField())
}

func TestVariableOverride_ValueField_FalseAndZeroAreUnset(t *testing.T) {
	o := &VariableOverride{ValueInt: 0, ValueBool: false, ValueStr: ""}
	assert.Equal(t, "", o.ValueField())
	assert.False(t, o.Value().IsSet())
}

func TestVariableOverride_Value_ConvertsMegabytes(t *testing.T) {
	o := &VariableOverride{ValueInt: 1}
	v, ok := o.Value().Int()
	require.True(t, ok)
	assert.Equal(t, int64(1048576), v)

	o.ValueInt = 1024
	v, _ = o.Value().Int()
	assert.Equal(t, int64(1024*1024*1024), v)
}

func TestVariableOverride_Value_OtherTypes(t *testing.T) {
	o := &VariableOverride{ValueBool: true}
	b, ok := o.Value().Bool()
	assert.True(t, ok)
	assert.True(t, b)

	o = &VariableOverride{ValueStr: "utf8mb4"}
	s, ok := o.Value().Str()
	assert.True(t, ok)
	assert.Equal(t, "utf8mb4", s)
}

func TestVariableOverride_SetValue_ClearsOtherFields(t *testing.T) {
	o := &VariableOverride{ValueInt: 12, ValueBool: true, ValueStr: "x"}

	o.SetValue(StrValue("utf8mb4"))
	assert.Equal(t, int64(0), o.ValueInt)
	assert.False(t, o.ValueBool)
	assert.Equal(t, "utf8mb4", o.ValueStr)

	o.SetValue(IntValue(256))
	assert.Equal(t, int64(256), o.ValueInt)
	assert.Equal(t, "", o.ValueStr)

	o.SetValue(NoValue())
	assert.Equal(t, "", o.ValueField())
}

func TestVariableOverride_Datatype(t *testing.T) {
	ctx := context.Background()

	o := &VariableOverride{MariaDBVariable: "log_bin"}
	dt, err := o.Datatype(ctx, testCatalog())
	require.NoError(t, err)
	assert.Equal(t, DatatypeBool, dt)

	o.MariaDBVariable = "unknown"
	_, err = o.Datatype(ctx, testCatalog())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestVariableOverride_Dynamic(t *testing.T) {
	ctx := context.Background()

	o := &VariableOverride{MariaDBVariable: "innodb_buffer_pool_size"}
	dynamic, err := o.Dynamic(ctx, testCatalog())
	require.NoError(t, err)
	assert.True(t, dynamic)

	o.MariaDBVariable = "log_bin"
	dynamic, err = o.Dynamic(ctx, testCatalog())
	require.NoError(t, err)
	assert.False(t, dynamic)
}

func TestVariableOverride_Validate_MultipleValues(t *testing.T) {
	o := &VariableOverride{MariaDBVariable: "innodb_buffer_pool_size", ValueInt: 128, ValueStr: "128M"}

	err := o.Validate(context.Background(), testCatalog())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidData)
	assert.Contains(t, err.Error(), "only one value can be set")
	assert.Contains(t, err.Error(), "innodb_buffer_pool_size")
}

func TestVariableOverride_Validate_IntVariable(t *testing.T) {
	ctx := context.Background()
	catalog := testCatalog()

	tests := []struct {
		name     string
		override VariableOverride
		wantErr  string
	}{
		{"int passes", VariableOverride{ValueInt: 128}, ""},
		{"bool fails", VariableOverride{ValueBool: true}, "value field for innodb_buffer_pool_size must be value_int"},
		{"str fails", VariableOverride{ValueStr: "128"}, "value field for innodb_buffer_pool_size must be value_int"},
		{"no value passes", VariableOverride{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := tt.override
			o.MariaDBVariable = "innodb_buffer_pool_size"

			err := o.Validate(ctx, catalog)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Equal(t, VariableName("innodb_buffer_pool_size"), validationErr.Variable)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestVariableOverride_Validate_Skip(t *testing.T) {
	ctx := context.Background()

	o := &VariableOverride{MariaDBVariable: "character_set_server", Skip: true}
	err := o.Validate(ctx, testCatalog())
	assert.ErrorIs(t, err, ErrInvalidData)
	assert.EqualError(t, err,
		"only boolean variables can be skipped, character_set_server is not a boolean variable")

	o = &VariableOverride{MariaDBVariable: "log_bin", Skip: true}
	assert.NoError(t, o.Validate(ctx, testCatalog()))
}

func TestVariableOverride_Validate_SkipCheckedAfterValue(t *testing.T) {
	o := &VariableOverride{MariaDBVariable: "character_set_server", ValueStr: "utf8mb4", Skip: true}

	err := o.Validate(context.Background(), testCatalog())
	assert.EqualError(t, err,
		"only boolean variables can be skipped, character_set_server is not a boolean variable")
}

func TestVariableOverride_Validate_EmptyOverrideSkipsLookup(t *testing.T) {
	store := &countingStore{VariableCatalog: testCatalog()}

	o := &VariableOverride{MariaDBVariable: "innodb_buffer_pool_size"}
	assert.NoError(t, o.Validate(context.Background(), store))
	assert.Equal(t, 0, store.calls)

	o.ValueInt = 64
	o.Skip = true
	_ = o.Validate(context.Background(), store)
	assert.Equal(t, 1, store.calls)
}

func TestVariableOverride_Validate_UnknownVariable(t *testing.T) {
	o := &VariableOverride{MariaDBVariable: "does_not_exist", ValueInt: 1}

	err := o.Validate(context.Background(), testCatalog())
	assert.ErrorIs(t, err, ErrInvalidData)
	assert.Contains(t, err.Error(), "does_not_exist")
}

func TestVariableOverride_Validate_StoreFailure(t *testing.T) {
	storeErr := errors.New("connection refused")
	store := &countingStore{VariableCatalog: testCatalog(), err: storeErr}

	o := &VariableOverride{MariaDBVariable: "log_bin", ValueBool: true}
	err := o.Validate(context.Background(), store)
	assert.ErrorIs(t, err, storeErr)
	assert.NotErrorIs(t, err, ErrInvalidData)
}

func TestVariableOverride_OptionName(t *testing.T) {
	o := &VariableOverride{MariaDBVariable: "innodb-buffer-pool-size"}
	assert.Equal(t, "innodb_buffer_pool_size", o.OptionName())
}

func TestVariableOverride_Validate_IntBounds(t *testing.T) {
	ctx := context.Background()
	catalog := testCatalog()

	tests := []struct {
		name    string
		value   int64
		wantErr bool
	}{
		{"largest value", MaxValueInt, false},
		{"smallest value", -MaxValueInt, false},
		{"overflow", MaxValueInt + 1, true},
		{"2^43 megabytes", 1 << 43, true},
		{"negative overflow", -MaxValueInt - 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &VariableOverride{MariaDBVariable: "innodb_buffer_pool_size", ValueInt: tt.value}

			err := o.Validate(ctx, catalog)
			if !tt.wantErr {
				require.NoError(t, err)
				v, _ := o.Value().Int()
				assert.Equal(t, tt.value*BytesPerMegabyte, v)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidData)
			assert.Contains(t, err.Error(), "value for innodb_buffer_pool_size must be between")
		})
	}
}

func TestVariableOverride_Validate_StrControlCharacters(t *testing.T) {
	ctx := context.Background()
	catalog := testCatalog()

	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"plain", "utf8mb4", false},
		{"spaces and unicode", "utf8mb4 ä", false},
		{"newline", "utf8mb4\ninit_file = /tmp/init.sql", true},
		{"carriage return", "utf8mb4\rlocal_infile = ON", true},
		{"null byte", "utf8mb4\x00", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &VariableOverride{MariaDBVariable: "character_set_server", ValueStr: tt.value}

			err := o.Validate(ctx, catalog)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidData)
			assert.EqualError(t, err,
				"value for character_set_server must not contain line breaks or control characters")
		})
	}
}

func TestIsSingleLine(t *testing.T) {
	assert.True(t, IsSingleLine(""))
	assert.True(t, IsSingleLine("db-primary (eu-west)"))
	assert.False(t, IsSingleLine("a\nb"))
	assert.False(t, IsSingleLine("a\tb"))
}

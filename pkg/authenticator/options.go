package authenticator

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

var validate = validator.New()

// DecodeOptions decodes an entry's options into out, a pointer to a struct
// using `mapstructure` and `validate` tags.
func DecodeOptions(opts Options, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(map[string]any(opts)); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	if err := validate.Struct(out); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	return nil
}

func toString(v any) string {
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(v)
}

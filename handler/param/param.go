package param

import (
	"boostlend/pkg/number"
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"

	"github.com/asaskevich/govalidator"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/schema"
	"github.com/holiman/uint256"
)

var decoder = schema.NewDecoder()

func init() {
	decoder.SetAliasTag("json")
	decoder.IgnoreUnknownKeys(true)

	decoder.RegisterConverter(common.Address{}, func(s string) reflect.Value {
		if !common.IsHexAddress(s) {
			return reflect.Value{}
		}
		return reflect.ValueOf(common.HexToAddress(s))
	})

	govalidator.TagMap["address"] = govalidator.Validator(common.IsHexAddress)
	govalidator.TagMap["amount"] = govalidator.Validator(func(s string) bool {
		_, err := number.ParseAmount(s)
		return err == nil
	})
}

// Binding decodes query params for GET requests and the json body otherwise,
// then validates v with its `valid` tags
func Binding(r *http.Request, v interface{}) error {
	if r.Method == http.MethodGet {
		if err := decoder.Decode(v, r.URL.Query()); err != nil {
			return err
		}
	} else if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}

	_, err := govalidator.ValidateStruct(v)
	return err
}

// Amount parses a decimal amount, "max" is the repay or withdraw everything sentinel
func Amount(s string) (*uint256.Int, error) {
	return number.ParseAmount(s)
}

// Address parses a hex address
func Address(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address %q", s)
	}

	return common.HexToAddress(s), nil
}

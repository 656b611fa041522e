package utils

import (
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/PhilipDev237/opend/src/common/principal"
)

var (
	// validatorM 存储自定义的验证器函数映射
	// key: 验证规则名称
	validatorM = map[string]validator.Func{
		"principal": rightPrincipal,
		"price":     rightPrice,
	}

	validate     *validator.Validate
	validateOnce sync.Once

	errInvalidPrice = errors.New("price must be a positive integer")
)

var (
	// rightPrincipal 验证 principal 文本格式 (字符集, 分组, CRC32 校验和)
	rightPrincipal validator.Func = func(fl validator.FieldLevel) bool {
		text, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		_, err := principal.Parse(text)
		return err == nil
	}

	// rightPrice 验证价格: 必须是大于 0 的整数 (canister 侧为 Nat)
	rightPrice validator.Func = func(fl validator.FieldLevel) bool {
		text, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		_, err := ParsePrice(text)
		return err == nil
	}
)

// Validator 返回注册了自定义规则的 validator 单例
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		for tag, fn := range validatorM {
			_ = validate.RegisterValidation(tag, fn)
		}
	})
	return validate
}

// Verify 校验结构体的 validate tag
func Verify(st interface{}) error {
	return Validator().Struct(st)
}

// ParsePrice 解析价格输入, 仅接受正整数
func ParsePrice(text string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, err
	}
	if !price.IsPositive() || !price.Equal(price.Truncate(0)) {
		return decimal.Zero, errInvalidPrice
	}
	return price, nil
}

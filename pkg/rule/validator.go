// Package rule 统一封装请求参数校验，结构体标签名为 rule.
package rule

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const tagName = "rule"

var (
	engine     *validator.Validate
	engineOnce sync.Once
)

// Engine 返回全局校验引擎，首次调用时初始化.
// gin 的 binding 引擎可用时直接复用，使 ShouldBind 与手动校验共享同一套规则.
func Engine() *validator.Validate {
	engineOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			engine = v
		} else {
			engine = validator.New()
		}

		engine.SetTagName(tagName)
	})

	return engine
}

// ValidateStruct 校验结构体字段上的 rule 标签.
func ValidateStruct(s any) error {
	return Engine().Struct(s)
}

// ValidateVar 按标签表达式校验单个值，例如 ValidateVar(addr, "required,hostname_port").
func ValidateVar(v any, tag string) error {
	return Engine().Var(v, tag)
}

// RegisterValidation 注册自定义校验函数.
func RegisterValidation(tag string, fn validator.Func) error {
	return Engine().RegisterValidation(tag, fn)
}

// ValidationErrors 字段名到错误描述的映射，适合直接序列化进错误响应.
type ValidationErrors map[string]string

// Errors 将校验错误展开为字段错误字典，非字段错误归入 "_" 键.
func Errors(err error) ValidationErrors {
	if err == nil {
		return nil
	}

	out := make(ValidationErrors)

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		out["_"] = err.Error()

		return out
	}

	for _, fe := range fieldErrs {
		msg := "failed rule " + fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}

		out[fe.Field()] = msg
	}

	return out
}

package handlers

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"taskmanager/internal/models"
)

var registerOnce sync.Once

// RegisterValidators adds the enum tags used in request bindings:
// stage, priority and activity. Matching is case-insensitive.
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		tags := map[string]validator.Func{
			"stage": func(fl validator.FieldLevel) bool {
				_, ok := models.ParseStage(fl.Field().String())
				return ok
			},
			"priority": func(fl validator.FieldLevel) bool {
				_, ok := models.ParsePriority(fl.Field().String())
				return ok
			},
			"activity": func(fl validator.FieldLevel) bool {
				_, ok := models.ParseActivityType(fl.Field().String())
				return ok
			},
		}
		for tag, fn := range tags {
			if err = v.RegisterValidation(tag, fn); err != nil {
				return
			}
		}
	})
	return err
}

package controller

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/caratlab/jewel-studio/common/storage"
	"github.com/caratlab/jewel-studio/scene"
	"github.com/caratlab/jewel-studio/service"
)

var (
	taskGenerator *service.Generator
	imageEnhancer *service.Enhancer
	imageStore    storage.Provider
)

// Setup wires the handlers to their collaborators. Called once from main
// before the router starts serving.
func Setup(generator *service.Generator, enhancer *service.Enhancer, store storage.Provider) {
	taskGenerator = generator
	imageEnhancer = enhancer
	imageStore = store
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("material", func(fl validator.FieldLevel) bool {
			_, err := scene.MaterialByName(fl.Field().String())
			return err == nil
		})
	}
}

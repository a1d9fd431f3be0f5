package controller

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/caratlab/jewel-studio/common/config"
	"github.com/caratlab/jewel-studio/common/image"
	"github.com/caratlab/jewel-studio/common/logger"
	"github.com/caratlab/jewel-studio/service"
)

// readUpload pulls one multipart file field into memory. The read is capped
// one byte past the limit so ValidateUpload can tell exactly-at-limit from
// over-limit.
func readUpload(c *gin.Context, field string) ([]byte, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return nil, err
	}
	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(io.LimitReader(file, config.UploadMaxBytes+1))
}

// resolveImageInput accepts either an uploaded file or an imageUrl form
// field naming the image (plain URL or data URL). The URL path insists the
// payload actually decodes as an image; remote bytes get no benefit of the
// doubt.
func resolveImageInput(c *gin.Context, field string) ([]byte, error) {
	if data, err := readUpload(c, field); err == nil {
		return data, nil
	}
	imageUrl := c.PostForm("imageUrl")
	if imageUrl == "" {
		return nil, errors.New("Image file or imageUrl is required")
	}
	_, encoded, err := image.GetImageFromUrl(imageUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %s", err.Error())
	}
	if _, _, err := image.GetImageSizeFromBase64(encoded); err != nil {
		return nil, fmt.Errorf("fetched data is not a decodable image: %s", err.Error())
	}
	return base64.StdEncoding.DecodeString(encoded)
}

// EnhanceImage runs the enhancement cascade on an uploaded or referenced
// image.
func EnhanceImage(c *gin.Context) {
	data, err := resolveImageInput(c, "file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := image.ValidateUpload(data, config.UploadMaxBytes); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prompt := c.PostForm("prompt")
	if prompt == "" {
		prompt = service.DefaultDescription
	}

	result := imageEnhancer.Enhance(c.Request.Context(), data, image.SniffContentType(data), prompt)
	if result.UseTextOnly {
		c.JSON(http.StatusOK, gin.H{
			"useTextOnly":     true,
			"textDescription": result.TextDescription,
			"processingTime":  result.ProcessingTime,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"enhancedImageUrl": result.EnhancedImageUrl,
		"enhancedImageId":  result.EnhancedImageId,
		"processingTime":   result.ProcessingTime,
	})
}

// VisionToPrompt turns an uploaded or referenced image into a generation
// prompt. The response always carries a usable prompt, even alongside a 400.
func VisionToPrompt(c *gin.Context) {
	data, err := resolveImageInput(c, "image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":          err.Error(),
			"enhancedPrompt": service.DefaultDescription,
		})
		return
	}
	if err := image.ValidateUpload(data, config.UploadMaxBytes); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":          err.Error(),
			"enhancedPrompt": service.DefaultDescription,
		})
		return
	}

	prompt, ok := imageEnhancer.DescribeImage(c.Request.Context(), data, image.SniffContentType(data))
	if !ok {
		logger.Warn(c.Request.Context(), "vision-to-prompt degraded to default prompt")
	}
	c.JSON(http.StatusOK, gin.H{"enhancedPrompt": prompt})
}

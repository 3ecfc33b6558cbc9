package services

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"github.com/peachwood/api/internal/domain"
)

const (
	maxProductNameLength  = 200
	maxDescriptionLength  = 2000
	maxNotesLength        = 500
	defaultCountry        = "United States"
	defaultShippingMethod = "Standard Shipping"
)

var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

// textPolicy strips all HTML from customer-supplied free text before it is
// stored or echoed back.
var textPolicy = bluemonday.StrictPolicy()

// ValidationError aggregates field-level validation messages.
type ValidationError struct {
	Messages []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e == nil || len(e.Messages) == 0 {
		return "validation failed"
	}
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// Fields returns the individual validation messages.
func (e *ValidationError) Fields() []string {
	if e == nil {
		return nil
	}
	return e.Messages
}

func cleanText(value string) string {
	return strings.TrimSpace(textPolicy.Sanitize(value))
}

func validateProductInput(input ProductInput) (ProductInput, error) {
	var messages []string

	input.Name = cleanText(input.Name)
	input.Description = cleanText(input.Description)
	input.ImageURL = strings.TrimSpace(input.ImageURL)
	input.Category = strings.TrimSpace(input.Category)

	details := make([]string, 0, len(input.Details))
	for _, detail := range input.Details {
		if cleaned := cleanText(detail); cleaned != "" {
			details = append(details, cleaned)
		}
	}
	input.Details = details

	if input.Name == "" {
		messages = append(messages, "Product name is required")
	} else if utf8.RuneCountInString(input.Name) > maxProductNameLength {
		messages = append(messages, fmt.Sprintf("Product name cannot exceed %d characters", maxProductNameLength))
	}
	if input.Price < 0 {
		messages = append(messages, "Price cannot be negative")
	}
	if input.Description == "" {
		messages = append(messages, "Product description is required")
	} else if utf8.RuneCountInString(input.Description) > maxDescriptionLength {
		messages = append(messages, fmt.Sprintf("Description cannot exceed %d characters", maxDescriptionLength))
	}
	if input.ImageURL == "" {
		messages = append(messages, "Product image URL is required")
	}
	if input.Category == "" {
		messages = append(messages, "Product category is required")
	} else if !domain.ValidCategory(input.Category) {
		messages = append(messages, "Invalid category. Must be one of: "+joinCategories())
	}
	if input.StockQuantity != nil && *input.StockQuantity < 0 {
		messages = append(messages, "Stock quantity cannot be negative")
	}

	if len(messages) > 0 {
		return ProductInput{}, &ValidationError{Messages: messages}
	}
	return input, nil
}

func validateCustomer(input CustomerInput) (domain.CustomerDetails, error) {
	var messages []string

	firstName := cleanText(input.FirstName)
	lastName := cleanText(input.LastName)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	phone := cleanText(input.Phone)
	street := cleanText(input.Address)
	city := cleanText(input.City)
	state := cleanText(input.State)
	zipCode := cleanText(input.ZipCode)
	country := cleanText(input.Country)
	if country == "" {
		country = defaultCountry
	}

	if firstName == "" {
		messages = append(messages, "First name is required")
	}
	if lastName == "" {
		messages = append(messages, "Last name is required")
	}
	if email == "" {
		messages = append(messages, "Email is required")
	} else if !emailPattern.MatchString(email) {
		messages = append(messages, "Please provide a valid email address")
	}
	if phone == "" {
		messages = append(messages, "Phone number is required")
	}
	if street == "" {
		messages = append(messages, "Street address is required")
	}
	if city == "" {
		messages = append(messages, "City is required")
	}
	if state == "" {
		messages = append(messages, "State is required")
	}
	if zipCode == "" {
		messages = append(messages, "ZIP code is required")
	}

	if len(messages) > 0 {
		return domain.CustomerDetails{}, &ValidationError{Messages: messages}
	}

	return domain.CustomerDetails{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Phone:     phone,
		Address: domain.Address{
			Street:  street,
			City:    city,
			State:   state,
			ZipCode: zipCode,
			Country: country,
		},
	}, nil
}

func joinCategories() string {
	names := make([]string, 0, len(domain.Categories))
	for _, category := range domain.Categories {
		names = append(names, string(category))
	}
	return strings.Join(names, ", ")
}

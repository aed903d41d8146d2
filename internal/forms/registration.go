package forms

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"wastetrack/internal/api"
)

var (
	ErrCredentialsRequired = errors.New("Username and password are required.")
	ErrRegistrationFields  = errors.New("Please fill in all required fields (username, password, user email, company name, company email, phone, and select a region).")
)

type LoginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

func BindLogin(c *gin.Context) (LoginForm, error) {
	var f LoginForm
	if err := c.ShouldBind(&f); err != nil {
		return f, err
	}
	f.Username = strings.TrimSpace(f.Username)
	return f, nil
}

func (f LoginForm) Validate() error {
	if f.Username == "" || f.Password == "" {
		return ErrCredentialsRequired
	}
	return nil
}

type RegisterForm struct {
	Username string `form:"username"`
	Email    string `form:"email"`
	Password string `form:"password"`
}

func BindRegister(c *gin.Context) (RegisterForm, error) {
	var f RegisterForm
	if err := c.ShouldBind(&f); err != nil {
		return f, err
	}
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)
	return f, nil
}

func (f RegisterForm) Input() api.RegisterInput {
	return api.RegisterInput{Username: f.Username, Email: f.Email, Password: f.Password}
}

// CompanyRegistrationForm: владелец и его компания одной формой.
type CompanyRegistrationForm struct {
	Username  string
	Password  string
	UserEmail string
	Company   CompanyForm
}

func BindCompanyRegistration(c *gin.Context) (CompanyRegistrationForm, error) {
	co, err := BindCompany(c)
	f := CompanyRegistrationForm{
		Username:  strings.TrimSpace(c.Request.PostForm.Get("username")),
		Password:  c.Request.PostForm.Get("password"),
		UserEmail: strings.TrimSpace(c.Request.PostForm.Get("user_email")),
		Company:   co,
	}
	return f, err
}

// Validate: регион обязателен, описание и услуги нет.
func (f CompanyRegistrationForm) Validate() error {
	if f.Username == "" || f.Password == "" || f.UserEmail == "" ||
		f.Company.Name == "" || f.Company.Email == "" || f.Company.Phone == "" || f.Company.RegionID == "" {
		return ErrRegistrationFields
	}
	return nil
}

func (f CompanyRegistrationForm) Input() api.CompanyRegistration {
	region, _ := strconv.Atoi(f.Company.RegionID)
	services := f.Company.ServiceIDs
	if services == nil {
		services = []int{}
	}
	return api.CompanyRegistration{
		Username:    f.Username,
		Password:    f.Password,
		UserEmail:   f.UserEmail,
		Name:        f.Company.Name,
		Email:       f.Company.Email,
		Phone:       f.Company.Phone,
		Description: f.Company.Description,
		RegionID:    region,
		Services:    services,
	}
}

package dto

import (
	"customer-management/internal/domain/customer"
	"customer-management/internal/domain/loan"
	"time"

	"github.com/shopspring/decimal"
)

// CustomerRequest is the body of create and update calls. Derived loan fields
// are absent; the server computes them.
type CustomerRequest struct {
	Name             string              `json:"name" validate:"required,max=100"`
	Surname          string              `json:"surname" validate:"required,max=100"`
	Username         string              `json:"username" validate:"required,max=50"`
	Email            string              `json:"email" validate:"required,email,max=255"`
	Phone            string              `json:"phone,omitempty" validate:"omitempty,max=30"`
	Address          string              `json:"address,omitempty" validate:"omitempty,max=255"`
	MonthlySalary    decimal.NullDecimal `json:"monthlySalary" swaggertype:"string" example:"2500.00"`
	CreditScore      *int                `json:"creditScore,omitempty" validate:"omitempty,gte=0,lte=1000" example:"720"`
	EmploymentStatus string              `json:"employmentStatus,omitempty" validate:"omitempty,max=50" example:"Employed"`
}

func (r *CustomerRequest) ToDomain() *customer.Customer {
	var score *int
	if r.CreditScore != nil {
		v := *r.CreditScore
		score = &v
	}
	return &customer.Customer{
		Name:             r.Name,
		Surname:          r.Surname,
		Username:         r.Username,
		Email:            r.Email,
		Phone:            r.Phone,
		Address:          r.Address,
		MonthlySalary:    r.MonthlySalary,
		CreditScore:      score,
		EmploymentStatus: r.EmploymentStatus,
	}
}

type CustomerResponse struct {
	CustomerID       int64     `json:"customerId"`
	Name             string    `json:"name"`
	Surname          string    `json:"surname"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone,omitempty"`
	Address          string    `json:"address,omitempty"`
	MonthlySalary    *string   `json:"monthlySalary" example:"2500.00"`
	CreditScore      *int      `json:"creditScore"`
	EmploymentStatus string    `json:"employmentStatus"`
	LoanEligible     bool      `json:"loanEligible"`
	MaxLoanAmount    string    `json:"maxLoanAmount" example:"120000.00"`
	CreditTier       string    `json:"creditTier" example:"GOOD"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func NewCustomerResponse(cust *customer.Customer) CustomerResponse {
	if cust == nil {
		return CustomerResponse{}
	}

	var salary *string
	if cust.MonthlySalary.Valid {
		s := cust.MonthlySalary.Decimal.StringFixed(2)
		salary = &s
	}

	return CustomerResponse{
		CustomerID:       cust.CustomerID,
		Name:             cust.Name,
		Surname:          cust.Surname,
		Username:         cust.Username,
		Email:            cust.Email,
		Phone:            cust.Phone,
		Address:          cust.Address,
		MonthlySalary:    salary,
		CreditScore:      cust.CreditScore,
		EmploymentStatus: cust.EmploymentStatus,
		LoanEligible:     cust.LoanEligible,
		MaxLoanAmount:    cust.MaxLoanAmount.StringFixed(2),
		CreditTier:       loan.TierFor(cust.CreditScore).Name,
		CreatedAt:        cust.CreatedAt,
		UpdatedAt:        cust.UpdatedAt,
	}
}

func NewCustomerListResponse(customers []*customer.Customer) []CustomerResponse {
	resp := make([]CustomerResponse, 0, len(customers))
	for _, c := range customers {
		resp = append(resp, NewCustomerResponse(c))
	}
	return resp
}

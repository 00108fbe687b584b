package productapp

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/sass-store/tenancy/app/sdk/errs"
	"github.com/sass-store/tenancy/business/domain/productbus"
	"github.com/shopspring/decimal"
)

type queryParams struct {
	Page     string
	Rows     string
	OrderBy  string
	ID       string
	Name     string
	Category string
	Featured string
	Active   string
	MinPrice string
	MaxPrice string
}

func parseQueryParams(r *http.Request) queryParams {
	values := r.URL.Query()

	return queryParams{
		Page:     values.Get("page"),
		Rows:     values.Get("rows"),
		OrderBy:  values.Get("orderBy"),
		ID:       values.Get("product_id"),
		Name:     values.Get("name"),
		Category: values.Get("category"),
		Featured: values.Get("featured"),
		Active:   values.Get("active"),
		MinPrice: values.Get("min_price"),
		MaxPrice: values.Get("max_price"),
	}
}

func parseFilter(qp queryParams) (productbus.QueryFilter, error) {
	var fieldErrors errs.FieldErrors
	var filter productbus.QueryFilter

	if qp.ID != "" {
		id, err := uuid.Parse(qp.ID)
		switch err {
		case nil:
			filter.ID = &id
		default:
			fieldErrors.Add("product_id", err)
		}
	}

	if qp.Name != "" {
		filter.Name = &qp.Name
	}

	if qp.Category != "" {
		filter.Category = &qp.Category
	}

	if qp.Featured != "" {
		b, err := strconv.ParseBool(qp.Featured)
		switch err {
		case nil:
			filter.Featured = &b
		default:
			fieldErrors.Add("featured", err)
		}
	}

	if qp.Active != "" {
		b, err := strconv.ParseBool(qp.Active)
		switch err {
		case nil:
			filter.Active = &b
		default:
			fieldErrors.Add("active", err)
		}
	}

	if qp.MinPrice != "" {
		d, err := decimal.NewFromString(qp.MinPrice)
		switch err {
		case nil:
			filter.MinPrice = &d
		default:
			fieldErrors.Add("min_price", err)
		}
	}

	if qp.MaxPrice != "" {
		d, err := decimal.NewFromString(qp.MaxPrice)
		switch err {
		case nil:
			filter.MaxPrice = &d
		default:
			fieldErrors.Add("max_price", err)
		}
	}

	if fieldErrors != nil {
		return productbus.QueryFilter{}, fieldErrors.ToError()
	}

	if err := productbus.PriceBounds(filter.MinPrice, filter.MaxPrice); err != nil {
		return productbus.QueryFilter{}, errs.NewFieldErrors("price", err)
	}

	return filter, nil
}

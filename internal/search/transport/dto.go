package transport

import "leadvox_backend/internal/apollo"

type SearchRequest struct {
	Locations      []string `json:"locations" validate:"omitempty,max=10,dive,min=1,max=100"`
	EmployeesMin   int      `json:"employeesMin" validate:"omitempty,min=0"`
	EmployeesMax   int      `json:"employeesMax" validate:"omitempty,min=0,gtefield=EmployeesMin"`
	Keywords       []string `json:"keywords" validate:"omitempty,max=10,dive,min=1,max=100"`
	Page           int      `json:"page" validate:"omitempty,min=1"`
	PerPage        int      `json:"perPage" validate:"omitempty,min=1,max=100"`
	IncludeFetched bool     `json:"includeFetched"`
}

type OrganizationResponse struct {
	OrganizationID string `json:"organizationId"`
	Name           string `json:"name"`
	Domain         string `json:"domain,omitempty"`
	Website        string `json:"website,omitempty"`
	Industry       string `json:"industry,omitempty"`
	Location       string `json:"location,omitempty"`
	EmployeeCount  int    `json:"employeeCount,omitempty"`
}

func ToOrganizationResponses(orgs []apollo.Organization) []OrganizationResponse {
	out := make([]OrganizationResponse, 0, len(orgs))
	for _, org := range orgs {
		out = append(out, OrganizationResponse{
			OrganizationID: org.ProviderID(),
			Name:           org.Name,
			Domain:         org.PrimaryDomain,
			Website:        org.WebsiteURL,
			Industry:       org.Industry,
			Location:       org.Location(),
			EmployeeCount:  org.EmployeeCount,
		})
	}
	return out
}

type SearchResponse struct {
	Items      []OrganizationResponse `json:"items"`
	Total      int                    `json:"total"`
	Page       int                    `json:"page"`
	TotalPages int                    `json:"totalPages"`
}

type FetchedIDsResponse struct {
	OrganizationIDs []string `json:"organizationIds"`
}

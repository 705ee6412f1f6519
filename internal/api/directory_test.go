package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectoryAPI_Listings(t *testing.T) {
	ctx := context.Background()

	var gotPath string
	record := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, req *http.Request) {
			gotPath = req.URL.Path
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(body))
		}
	}

	r := mux.NewRouter()
	r.HandleFunc("/api/User/distributors", record(`[{"id":1,"name":"North Zone","email":"dist@x.com","mobileNumber":"9999999999","referCode":"DIST-42"}]`)).Methods(http.MethodGet)
	r.HandleFunc("/api/User/companies", record(`[{"id":3,"companyName":"FiberWorks","email":"ops@fiberworks.in","distributorId":1,"distributorName":"North Zone","technicianCount":4},{"id":4,"companyName":"LoneCo","email":"lone@x.com","distributorId":null,"distributorName":null,"technicianCount":0}]`)).Methods(http.MethodGet)
	r.HandleFunc("/api/User/distributors/{id}/companies", record(`[{"id":3,"companyName":"FiberWorks","technicianCount":4}]`)).Methods(http.MethodGet)
	r.HandleFunc("/api/User/technicians", record(`[{"id":7,"name":"J. Doe","email":"tech@x.com"}]`)).Methods(http.MethodGet)
	r.HandleFunc("/api/User/companies/{id}/technicians", record(`[{"id":7,"name":"J. Doe"}]`)).Methods(http.MethodGet)

	gw, _ := newTestGateway(t, r)
	dir := NewDirectoryAPI(gw)

	t.Run("Distributors", func(t *testing.T) {
		distributors, err := dir.Distributors(ctx)
		require.NoError(t, err)
		require.Len(t, distributors, 1)
		assert.Equal(t, "DIST-42", distributors[0].ReferCode)
	})

	t.Run("Companies Distinguish Sponsored From Independent", func(t *testing.T) {
		companies, err := dir.Companies(ctx)
		require.NoError(t, err)
		require.Len(t, companies, 2)

		sponsored, independent := companies[0], companies[1]
		require.True(t, sponsored.Sponsored())
		assert.Equal(t, int32(1), *sponsored.DistributorID)
		assert.Equal(t, "North Zone", *sponsored.DistributorName)
		assert.Equal(t, int32(4), sponsored.TechnicianCount)

		assert.False(t, independent.Sponsored())
		assert.Nil(t, independent.DistributorID)
		assert.Nil(t, independent.DistributorName)
	})

	t.Run("Distributor Companies Path", func(t *testing.T) {
		companies, err := dir.DistributorCompanies(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "/api/User/distributors/1/companies", gotPath)
		require.Len(t, companies, 1)
	})

	t.Run("Technicians", func(t *testing.T) {
		technicians, err := dir.Technicians(ctx)
		require.NoError(t, err)
		require.Len(t, technicians, 1)
		assert.Equal(t, int32(7), technicians[0].ID)
	})

	t.Run("Company Technicians Path", func(t *testing.T) {
		_, err := dir.CompanyTechnicians(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, "/api/User/companies/3/technicians", gotPath)
	})
}

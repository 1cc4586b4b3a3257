package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	cartcontroller "repairflow/internal/cart/controller"
	checkoutcontroller "repairflow/internal/checkout/controller"
	"repairflow/internal/commons"
	contentcontroller "repairflow/internal/content/controller"
	flowcontroller "repairflow/internal/flow/controller"
	mailercontroller "repairflow/internal/mailer/controller"
)

type Controllers struct {
	Flow     *flowcontroller.FlowController
	Cart     *cartcontroller.CartController
	Checkout *checkoutcontroller.CheckoutController
	Email    *mailercontroller.EmailController
	Seed     *contentcontroller.SeedController
}

// NewRouter mounts the API. requireSession guards checkout and sessionTTL
// bounds the wizard session cookie.
func NewRouter(c Controllers, requireSession func(http.Handler) http.Handler, sessionTTL time.Duration, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(Trace)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		commons.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"}, logger)
	})

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(Session(sessionTTL))

			r.Get("/flow", c.Flow.GetFlow)
			r.Get("/flow/steps/{slug}", c.Flow.GetStep)
			r.Post("/flow/steps/{slug}/continue", c.Flow.Continue)
			r.Get("/flow/steps/{slug}/previous", c.Flow.Previous)

			r.Get("/cart", c.Cart.Get)
			r.Put("/cart/fields/{name}", c.Cart.UpdateField)
			r.Delete("/cart", c.Cart.Reset)

			r.With(requireSession).Post("/checkout", c.Checkout.Submit)
		})

		r.Post("/email/contact", c.Email.Contact)
		r.Post("/email/template", c.Email.Template)
		r.Post("/seed", c.Seed.Seed)
	})

	return r
}

package access_test

import (
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wedflix/command-center/internal/access"
)

var _ = Describe("Resolver", func() {
	var resolver *access.Resolver

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		resolver = access.NewResolver(logger)
	})

	Describe("Resolve", func() {
		Context("when unauthenticated", func() {
			It("should allow the sign-in route", func() {
				d := resolver.Resolve(nil, access.AreaAdmin, access.SignInRoute)
				Expect(d.Allowed).To(BeTrue())
			})

			It("should allow the sign-up route", func() {
				d := resolver.Resolve(nil, access.AreaAdmin, access.SignUpRoute)
				Expect(d.Allowed).To(BeTrue())
			})

			It("should redirect everything else to sign-in", func() {
				d := resolver.Resolve(nil, access.AreaAdmin, "/companies")
				Expect(d.Allowed).To(BeFalse())
				Expect(d.RedirectTo).To(Equal(access.SignInRoute))
			})
		})

		Context("when the area is permitted", func() {
			It("should allow a route belonging to the area", func() {
				roles := []access.Role{access.RoleCommandCenter}
				d := resolver.Resolve(roles, access.AreaAdmin, "/companies")
				Expect(d.Allowed).To(BeTrue())
				Expect(d.RedirectTo).To(BeEmpty())
			})

			It("should redirect a foreign route to the area default", func() {
				roles := []access.Role{access.RoleCommandCenter}
				d := resolver.Resolve(roles, access.AreaAdmin, "/it/user-management")
				Expect(d.Allowed).To(BeFalse())
				Expect(d.RedirectTo).To(Equal("/"))
			})
		})

		Context("when the area is not permitted", func() {
			It("should redirect a SAM user trying the admin area to the SAM landing route", func() {
				roles := []access.Role{access.RoleSAMUser}
				d := resolver.Resolve(roles, access.AreaAdmin, "/companies")
				Expect(d.Allowed).To(BeFalse())
				Expect(d.RedirectTo).To(Equal("/sam-booking"))
			})

			It("should redirect an IT user trying the SAM area to the IT landing route", func() {
				roles := []access.Role{access.RoleITUser}
				d := resolver.Resolve(roles, access.AreaSAM, "/sam-booking")
				Expect(d.Allowed).To(BeFalse())
				Expect(d.RedirectTo).To(Equal("/it/user-management"))
			})
		})

		Context("when several roles grant several areas", func() {
			It("should redirect to the first granted area in declared order", func() {
				roles := []access.Role{access.RoleITUser, access.RoleSAMUser}
				d := resolver.Resolve(roles, access.AreaAdmin, "/companies")
				Expect(d.Allowed).To(BeFalse())
				Expect(d.RedirectTo).To(Equal("/sam-booking"))
			})
		})

		Context("when the role set grants no area at all", func() {
			It("should fall back to the system default area landing route", func() {
				roles := []access.Role{access.Role("UNKNOWN_ROLE")}
				d := resolver.Resolve(roles, access.AreaAdmin, "/companies")
				Expect(d.Allowed).To(BeFalse())
				Expect(d.RedirectTo).To(Equal("/"))
			})
		})
	})

	Describe("ResolveRoute", func() {
		It("should derive the area from the route and allow it", func() {
			roles := []access.Role{access.RoleSAMUser}
			d := resolver.ResolveRoute(roles, "/sam-booking")
			Expect(d.Allowed).To(BeTrue())
		})

		It("should resolve shared routes against any granted area listing them", func() {
			roles := []access.Role{access.RoleSAMUser}
			d := resolver.ResolveRoute(roles, "/sam-wishlist")
			Expect(d.Allowed).To(BeTrue())
		})

		It("should redirect when no granted area lists the route", func() {
			roles := []access.Role{access.RoleSAMUser}
			d := resolver.ResolveRoute(roles, "/it/user-management")
			Expect(d.Allowed).To(BeFalse())
			Expect(d.RedirectTo).To(Equal("/sam-booking"))
		})

		It("should redirect unknown routes to the first granted area landing route", func() {
			roles := []access.Role{access.RoleITUser}
			d := resolver.ResolveRoute(roles, "/nowhere")
			Expect(d.Allowed).To(BeFalse())
			Expect(d.RedirectTo).To(Equal("/it/user-management"))
		})

		It("should redirect unauthenticated callers to sign-in", func() {
			d := resolver.ResolveRoute(nil, "/companies")
			Expect(d.Allowed).To(BeFalse())
			Expect(d.RedirectTo).To(Equal(access.SignInRoute))
		})
	})

	Describe("AllowedAreas", func() {
		It("should return areas in declared order regardless of role order", func() {
			roles := []access.Role{access.RoleITUser, access.RoleCommandCenter, access.RoleSAMUser}
			Expect(access.AllowedAreas(roles)).To(Equal([]access.Area{
				access.AreaAdmin, access.AreaSAM, access.AreaIT,
			}))
		})

		It("should deduplicate areas granted by several roles", func() {
			roles := []access.Role{access.RoleSAMUser, access.RoleSAMUser}
			Expect(access.AllowedAreas(roles)).To(Equal([]access.Area{access.AreaSAM}))
		})

		It("should ignore unknown roles", func() {
			roles := []access.Role{access.Role("MYSTERY")}
			Expect(access.AllowedAreas(roles)).To(BeEmpty())
		})
	})

	Describe("Role display names", func() {
		It("should label the admin role", func() {
			Expect(access.RoleCommandCenter.DisplayName()).To(Equal("Admin"))
		})

		It("should label unknown roles generically", func() {
			Expect(access.Role("WHO").DisplayName()).To(Equal("User"))
		})
	})
})

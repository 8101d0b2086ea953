package validation_test

import (
	"github.com/go-playground/validator/v10"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"fritakagp.app/backend/internal/http/validation"
)

type period struct {
	From int `json:"fom" validate:"required"`
}

type form struct {
	PersonID  string   `json:"identitetsnummer" validate:"required,identitetsnummer"`
	OrgNumber string   `json:"virksomhetsnummer" validate:"required,orgnr"`
	Periods   []period `json:"perioder" validate:"required,min=1,dive"`
	Ignored   string   `json:"-"`
}

var _ = Describe("number checks", func() {
	DescribeTable("identity numbers",
		func(input string, valid bool) {
			Expect(validation.ValidIdentityNumber(input)).To(Equal(valid))
		},
		Entry("valid fødselsnummer", "10107400090", true),
		Entry("another valid number", "20015001543", true),
		Entry("wrong control digit", "10107400091", false),
		Entry("too short", "1010740009", false),
		Entry("letters", "1010740009a", false),
		Entry("empty", "", false),
	)

	DescribeTable("organisation numbers",
		func(input string, valid bool) {
			Expect(validation.ValidOrgNumber(input)).To(Equal(valid))
		},
		Entry("valid", "917404437", true),
		Entry("another valid", "974652277", true),
		Entry("wrong control digit", "123456789", false),
		Entry("too long", "9174044370", false),
	)
})

var _ = Describe("Register", func() {
	var v *validator.Validate

	BeforeEach(func() {
		v = validator.New()
		Expect(validation.Register(v)).To(Succeed())
	})

	It("accepts a valid form", func() {
		err := v.Struct(form{PersonID: "10107400090", OrgNumber: "917404437", Periods: []period{{From: 1}}})
		Expect(err).NotTo(HaveOccurred())
	})

	It("reports JSON field paths and Norwegian messages", func() {
		err := v.Struct(form{PersonID: "10107400091", OrgNumber: "123456789"})
		Expect(err).To(HaveOccurred())

		fields := validation.Errors(err)
		Expect(fields).To(HaveLen(3))
		Expect(fields[0].PropertyPath).To(Equal("identitetsnummer"))
		Expect(fields[0].Message).To(ContainSubstring("gyldig identitetsnummer"))
		Expect(fields[0].Value).To(Equal("10107400091"))
		Expect(fields[1].PropertyPath).To(Equal("virksomhetsnummer"))
		Expect(fields[2].PropertyPath).To(Equal("perioder"))
		Expect(fields[2].Message).To(ContainSubstring("påkrevd"))
	})

	It("returns nil for errors that are not validation errors", func() {
		Expect(validation.Errors(nil)).To(BeNil())
	})
})

package legal

import (
	"fmt"
	"strings"
)

// Format renders the part of s a question of type typ asks about.
func (p *Provider) Format(s State, typ QueryType) string {
	var b strings.Builder
	switch typ {
	case QuerySeasonalBan:
		fmt.Fprintf(&b, "🚫 **Seasonal Fishing Ban - %s**\n\n", s.Name)
		fmt.Fprintf(&b, "📅 **Period:** %s\n", notSpecified(s.Ban.Period))
		fmt.Fprintf(&b, "🎯 **Reason:** %s\n", notSpecified(s.Ban.Reason))
		fmt.Fprintf(&b, "💰 **Penalty:** %s\n\n", notSpecified(s.Ban.Penalty))
		if st := CheckBan(s.Ban.Period, p.now()).String(); st != "" {
			fmt.Fprintf(&b, "⚠️ **Current Status:** %s\n\n", st)
		}
		b.WriteString("📋 **Important Notes:**\n")
		b.WriteString("• This ban applies to all mechanized fishing vessels\n")
		b.WriteString("• Traditional fishing methods may have different regulations\n")
		b.WriteString("• Check with local authorities for latest updates")

	case QueryLicensing:
		l := s.Licensing
		fmt.Fprintf(&b, "📋 **Fishing License Requirements - %s**\n\n", s.Name)
		fmt.Fprintf(&b, "🚤 **Motorized Boats:** %s\n", notSpecified(l.MotorizedBoats))
		fmt.Fprintf(&b, "🎣 **Fishing License:** %s\n", notSpecified(l.FishingLicense))
		fmt.Fprintf(&b, "⏰ **Validity:** %s", notSpecified(l.Validity))
		if len(l.Documents) > 0 {
			b.WriteString("\n\n📄 **Required Documents:**")
			for _, d := range l.Documents {
				b.WriteString("\n• " + d)
			}
		}

	case QuerySafety:
		fmt.Fprintf(&b, "🦺 **Safety Requirements - %s**\n\n", s.Name)
		b.WriteString("**Mandatory Safety Equipment:**\n")
		for _, r := range s.Safety {
			b.WriteString("• " + r + "\n")
		}
		b.WriteString("\n⚠️ **Important:** All safety equipment must be in working condition and easily accessible.")

	case QueryContact:
		fmt.Fprintf(&b, "📞 **Contact Information - %s**\n\n", s.Name)
		fmt.Fprintf(&b, "🏢 **Department:** %s\n", notAvailable(s.Contact.Department))
		fmt.Fprintf(&b, "📞 **Helpline:** %s\n", notAvailable(s.Contact.Helpline))
		fmt.Fprintf(&b, "🌐 **Website:** %s", notAvailable(s.Contact.Website))

	case QueryPenalties:
		fmt.Fprintf(&b, "⚖️ **Penalty Information - %s**\n\n", s.Name)
		fmt.Fprintf(&b, "💰 **Seasonal Ban Violation:** %s\n\n", notSpecified(s.Ban.Penalty))
		b.WriteString("📋 **Additional Penalties May Apply For:**\n")
		b.WriteString("• Fishing without valid license\n")
		b.WriteString("• Using prohibited fishing methods\n")
		b.WriteString("• Fishing in restricted areas\n")
		b.WriteString("• Not carrying required safety equipment")

	default:
		fmt.Fprintf(&b, "⚖️ **Fishing Laws Overview - %s**\n\n", s.Name)
		fmt.Fprintf(&b, "🚫 **Seasonal Ban:** %s\n", notSpecified(s.Ban.Period))
		fmt.Fprintf(&b, "📋 **License Required:** %s\n", notSpecified(s.Licensing.FishingLicense))
		fmt.Fprintf(&b, "📞 **Helpline:** %s\n\n", notAvailable(s.Contact.Helpline))
		b.WriteString("💡 **Tip:** Ask me specific questions about bans, licenses, safety requirements, or contact information for detailed answers.")
	}
	return b.String()
}

// FormatCompact renders an SMS summary of s.
func (p *Provider) FormatCompact(s State) string {
	period, _, _ := strings.Cut(s.Ban.Period, " (")
	out := fmt.Sprintf("%s Fishing Rules:\n🚫 Ban: %s\n📋 License: %s\n📞 Helpline: %s",
		s.Name, period, s.Licensing.FishingLicense, s.Contact.Helpline)
	if st := CheckBan(s.Ban.Period, p.now()); st.State == BanActive {
		out += "\n" + st.String()
	}
	return out
}

func notSpecified(s string) string {
	if s == "" {
		return "Not specified"
	}
	return s
}

func notAvailable(s string) string {
	if s == "" {
		return "Not available"
	}
	return s
}

var faqs = []struct{ key, answer string }{
	{"registration", "To register your fishing boat, visit your state fisheries department with required documents including boat ownership proof, engine certificate, and safety equipment certification."},
	{"license_renewal", "Fishing licenses must be renewed annually or as per state regulations. Contact your local fisheries office before expiry date."},
	{"safety_equipment", "All fishing vessels must carry life jackets, VHF radio, first aid kit, emergency flares, and navigation equipment as per state regulations."},
	{"ban_period", "Seasonal fishing bans vary by state but typically occur during monsoon season (June-July) or fish breeding season (April-June)."},
	{"penalties", "Violations can result in fines ranging from ₹5,000 to ₹50,000, boat confiscation, and license suspension depending on the offense and state."},
}

// FAQ answers a common question by topic key ("registration",
// "license renewal", "ban period", ...). Spaces and underscores are
// interchangeable.
func FAQ(question string) string {
	q := strings.ReplaceAll(strings.ToLower(question), " ", "_")
	for _, f := range faqs {
		if strings.Contains(q, f.key) {
			return f.answer
		}
	}
	return "For specific legal questions, please contact your state fisheries department helpline."
}

package conversation

import (
	"fmt"

	"sherpa/models"
)

const (
	SelectionBrowse = "browse_used_cars"

	msgGreeting = "Hello! 👋 Welcome to Sherpa Hyundai. I'm here to help you find your perfect used car. How can I assist you today?"

	msgAskBudget = "Great choice! What's your budget range?"
	msgAskType   = "Perfect! What type of car do you prefer?"
	msgAskBrand  = "Excellent choice! Which brand do you prefer?"
	msgListings  = "Excellent choice! Here are some cars that match your criteria:"

	msgNoTypes    = "No types available for this budget."
	msgNoBrands   = "No brands for this type & budget."
	msgNoCars     = "No cars found."
	msgNoMoreCars = "No more cars."
	msgMoreHint   = `Type "more" for more cars.`

	msgAskPhone   = "Please enter your contact phone number."
	msgAskName    = "Please tell me your name."
	msgAskLicense = "Do you have a valid driving license?"

	msgConfirmed = "✅ Your test drive is confirmed! Thank you. We'll contact you soon."
	msgCanceled  = "❌ Booking canceled."

	msgCatalogDown   = "Sorry, our car catalog is temporarily unavailable. Please try again in a moment."
	msgBookingFailed = "Sorry, we couldn't confirm your test drive just now. Please tap Confirm to try again."

	msgSayHi = `Please type "hi" to get started.`

	msgViewCarsHint    = `Tap SELECT on a car above to book a test drive, or type "more" for more cars.`
	msgDoneViewingHint = "Tap SELECT on a car above to book a test drive."
)

func greetingActions() []models.OutboundAction {
	return []models.OutboundAction{
		models.SendButtons{
			Body:    msgGreeting,
			Buttons: []models.Option{{ID: SelectionBrowse, Title: "Browse Cars"}},
		},
	}
}

func budgetList() models.OutboundAction {
	return models.SendList{
		Header:  "Select Budget",
		Body:    "Choose your budget range:",
		Button:  "Select",
		Options: BudgetOptions(),
	}
}

func typeList(options []models.Option) models.OutboundAction {
	return models.SendList{
		Header:  "Select Type",
		Body:    "Choose car type:",
		Button:  "Select",
		Options: options,
	}
}

func brandList(options []models.Option) models.OutboundAction {
	return models.SendList{
		Header:  "Select Brand",
		Body:    "Choose car brand:",
		Button:  "Select",
		Options: options,
	}
}

func dateList(carLabel string) models.OutboundAction {
	return models.SendList{
		Header:  "Schedule Test Drive",
		Body:    fmt.Sprintf("When for your %s?", carLabel),
		Button:  "Choose",
		Options: dateOptions,
	}
}

func slotButtons() models.OutboundAction {
	return models.SendButtons{
		Body:    "Which time works for you?",
		Buttons: slotOptions,
	}
}

func licenseButtons() models.OutboundAction {
	return models.SendButtons{
		Body: msgAskLicense,
		Buttons: []models.Option{
			{ID: SelectionYes, Title: "Yes"},
			{ID: SelectionNo, Title: "No"},
		},
	}
}

func confirmButtons() models.OutboundAction {
	return models.SendButtons{
		Body: "Choose an option:",
		Buttons: []models.Option{
			{ID: SelectionConfirm, Title: "Confirm"},
			{ID: SelectionCancel, Title: "Cancel"},
		},
	}
}

func dateTitle(dateID string) string {
	for _, opt := range dateOptions {
		if opt.ID == dateID {
			return opt.Title
		}
	}
	return dateID
}
